// Package revert implements a LIFO stack of undo functions, grounded on
// the teacher's pkg/revert: a caller that applies several changes and then
// discovers a later one is invalid can unwind everything it already did
// without hand-rolling "if step 2 fails, undo step 1" bookkeeping at every
// call site.
package revert

import "fmt"

// Func is a single undo step. It should restore whatever state its
// corresponding forward step changed.
type Func func() error

// Stack is a LIFO sequence of revert functions. The zero value is an empty
// stack, ready to use.
type Stack struct {
	funcs []Func
}

// Push adds a revert function to the top of the stack.
func (s *Stack) Push(f Func) {
	s.funcs = append(s.funcs, f)
}

// Len reports how many revert functions remain.
func (s *Stack) Len() int { return len(s.funcs) }

// Revert runs every pushed function in reverse order (most recently pushed
// first), stopping at the first error. Functions below the failing one on
// the stack are left un-run; the returned error reports how many were
// skipped.
func (s *Stack) Revert() error {
	for i := len(s.funcs) - 1; i >= 0; i-- {
		if err := s.funcs[i](); err != nil {
			skipped := i
			s.funcs = nil
			return fmt.Errorf("failed to execute revert function; skipping %d revert functions: %w", skipped, err)
		}
	}
	s.funcs = nil
	return nil
}
