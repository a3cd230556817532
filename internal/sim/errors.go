package sim

import (
	"errors"
	"fmt"
)

// Domain errors for evolution runs.
var (
	// ErrNonFinite indicates NaN or Inf leaked past the numerical safeguards.
	ErrNonFinite = errors.New("sim: non-finite population (NaN or Inf detected)")

	// ErrNegativeMass indicates a population entry dropped below zero.
	ErrNegativeMass = errors.New("sim: negative population mass")

	// ErrBadInitial indicates the initial proteoform is outside the state space.
	ErrBadInitial = errors.New("sim: initial proteoform out of range")
)

// StepError carries the step index and the offending population snapshot
// so a numerical failure can be diagnosed rather than silently averaged
// into a NaN.
type StepError struct {
	Step       int
	Population Population
	Wrapped    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
