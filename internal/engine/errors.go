package engine

import (
	"fmt"
	"time"
)

// StepError wraps the final error of a step that exhausted its retry policy.
type StepError struct {
	Module      string
	Description string
	Attempts    int
	Err         error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %v (after %d attempts)", e.Module, e.Description, e.Err, e.Attempts)
}

func (e *StepError) Unwrap() error { return e.Err }

// TimeoutError marks a step whose until-timeout budget ran out while the
// underlying condition (usually a held lock) persisted.
type TimeoutError struct {
	Budget time.Duration
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("gave up after %s: %v", e.Budget, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
