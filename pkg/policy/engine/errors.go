package engine

import (
	"fmt"
	"time"
)

// CancelledError indicates the caller cancelled an in-flight evaluation or
// its deadline expired. No partial result accompanies it.
type CancelledError struct {
	PackID string
	Cause  error
}

// Error returns the error message.
func (e *CancelledError) Error() string {
	return fmt.Sprintf("evaluation cancelled for pack %q: %v", e.PackID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *CancelledError) Unwrap() error {
	return e.Cause
}

// DetectorFailureError describes one isolated detector failure. It is
// logged, never returned to the caller: the failing detector contributes
// an empty signal set and the evaluation proceeds.
type DetectorFailureError struct {
	Detector string
	Elapsed  time.Duration
	Cause    error
}

// Error returns the error message.
func (e *DetectorFailureError) Error() string {
	return fmt.Sprintf("detector %q failed after %v: %v", e.Detector, e.Elapsed, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DetectorFailureError) Unwrap() error {
	return e.Cause
}
