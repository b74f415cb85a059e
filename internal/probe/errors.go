package probe

import (
	"errors"
	"fmt"
	"time"
)

// ErrCodeUnresolved marks a measurement that was still in flight when the
// caller stopped waiting for it.
const ErrCodeUnresolved = "UNRESOLVED_PROBE"

// UnresolvedError is returned by Pending.Wait when the caller's context
// ends before the presentation notification arrives.
//
// It is informational. The measurement stays armed and may still resolve
// later; the probe itself never gives up on it.
type UnresolvedError struct {
	Code     string
	Seq      int64
	IssuedAt time.Time
	Cause    error
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s: measurement %d not presented: %v", e.Code, e.Seq, e.Cause)
}

// Unwrap returns the context error that ended the wait.
func (e *UnresolvedError) Unwrap() error {
	return e.Cause
}

// IsUnresolved returns true if err is an UnresolvedError.
// Uses errors.As to handle wrapped errors.
func IsUnresolved(err error) bool {
	var ue *UnresolvedError
	return errors.As(err, &ue)
}
