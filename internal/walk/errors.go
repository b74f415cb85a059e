package walk

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes sequencer configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidBounds indicates non-positive board dimensions or an
	// origin outside the board.
	ErrCodeInvalidBounds ConfigErrorCode = "INVALID_BOUNDS"

	// ErrCodeInvalidConfig indicates a bad setting outside the board,
	// such as a seed that is not valid UTF-8.
	ErrCodeInvalidConfig ConfigErrorCode = "INVALID_CONFIG"

	// ErrCodeAlreadyStarted indicates Start was called twice.
	ErrCodeAlreadyStarted ConfigErrorCode = "ALREADY_STARTED"
)

// ConfigError is returned synchronously when a walk cannot start.
// The caller must fix the configuration before retrying.
type ConfigError struct {
	Code    ConfigErrorCode
	Message string
	Bounds  Bounds
	Origin  Position
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Code == ErrCodeInvalidBounds {
		return fmt.Sprintf("%s: %s (board=%dx%d, origin=%s)",
			e.Code, e.Message, e.Bounds.Height, e.Bounds.Width, e.Origin)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidBounds returns true if err is an INVALID_BOUNDS ConfigError.
// Uses errors.As to handle wrapped errors.
func IsInvalidBounds(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidBounds
	}
	return false
}

// IsInvalidConfig returns true if err is an INVALID_CONFIG ConfigError.
func IsInvalidConfig(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidConfig
	}
	return false
}

func newBoundsError(b Bounds, origin Position, msg string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidBounds,
		Message: msg,
		Bounds:  b,
		Origin:  origin,
	}
}

func newConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf(format, args...),
	}
}
