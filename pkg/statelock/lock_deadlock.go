//go:build deadlock

package statelock

import "github.com/sasha-s/go-deadlock"

// RWMutex is go-deadlock's lock-order-cycle-detecting RWMutex, built with
// `-tags deadlock`.
type RWMutex = deadlock.RWMutex

// Mutex is go-deadlock's lock-order-cycle-detecting Mutex.
type Mutex = deadlock.Mutex
