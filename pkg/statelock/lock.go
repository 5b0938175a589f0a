//go:build !deadlock

// Package statelock provides the locking primitives the coordinator uses to
// serialize publication of new SwitchState snapshots.
//
// Grounded on the teacher's pkg/lock: a RWMutex wrapper that can be swapped
// for github.com/sasha-s/go-deadlock's drop-in replacement under the
// "deadlock" build tag, so deadlock detection is opt-in during
// development/testing without paying its overhead in production builds —
// exactly the tradeoff the teacher's pkg/lock makes.
package statelock

import "sync"

// RWMutex aliases the mutex implementation in use. See lock_deadlock.go for
// the "deadlock" build-tag variant backed by github.com/sasha-s/go-deadlock.
type RWMutex = sync.RWMutex

// Mutex aliases the plain mutex implementation in use.
type Mutex = sync.Mutex
