package analysis

import (
	"fmt"
)

// InvalidConfigurationError is returned when analyzer parameters are out of
// their valid range. It is reported before any measurement begins.
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// InsufficientDataError is returned when fewer than two input classes end up
// with usable samples. Correlation is undefined with one class.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return "insufficient data: " + e.Reason
}

// ExecutionFailureError describes a block failure observed while sampling a
// single input class. Sampling of the remaining classes continues.
type ExecutionFailureError struct {
	Class     string
	Iteration int
	Err       error
}

func (e *ExecutionFailureError) Error() string {
	return fmt.Sprintf("block execution failed for class %q at iteration %d: %v", e.Class, e.Iteration, e.Err)
}

// Cause returns the underlying block error. Compatible with errors.Cause.
func (e *ExecutionFailureError) Cause() error {
	return e.Err
}

func (e *ExecutionFailureError) Unwrap() error {
	return e.Err
}
