// Package derrors provides the error types returned by complexprof.
// Every error carries a stable code so callers can branch on the failure kind
// without matching on message text.
package derrors

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeIdentityMismatch = "IDENTITY_MISMATCH"
	CodeNotStarted       = "NOT_STARTED"
	CodeSinkWrite        = "SINK_WRITE_ERROR"
	CodeConfiguration    = "CONFIG_ERROR"
	CodeValidation       = "VALIDATION_ERROR"
)

// ProfilerError is the base interface for all complexprof errors
type ProfilerError interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

// baseError provides common functionality for all complexprof errors
type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// IdentityMismatchError is returned when an engine is used from a process other
// than the one that created it, or after it was closed. It is not retryable:
// the caller must build a fresh engine.
type IdentityMismatchError struct {
	baseError
	Op       string
	Expected int
	Actual   int
}

// NewIdentityMismatchError creates a new identity mismatch error
func NewIdentityMismatchError(op string, expected, actual int) *IdentityMismatchError {
	return &IdentityMismatchError{
		baseError: baseError{
			code:    CodeIdentityMismatch,
			message: fmt.Sprintf("%s: process identity mismatch (engine pid %d, caller pid %d)", op, expected, actual),
		},
		Op:       op,
		Expected: expected,
		Actual:   actual,
	}
}

// NotStartedError is returned when Stop is called for a name with no pending start
type NotStartedError struct {
	baseError
	Op   string
	Name string
}

// NewNotStartedError creates a new not started error
func NewNotStartedError(op, name string) *NotStartedError {
	return &NotStartedError{
		baseError: baseError{
			code:    CodeNotStarted,
			message: fmt.Sprintf("%s: timer %q has not been started", op, name),
		},
		Op:   op,
		Name: name,
	}
}

// SinkWriteError is returned when a report could not be produced or written.
// Aggregates are left intact, so the flush may be retried.
type SinkWriteError struct {
	baseError
	Sink string
}

// NewSinkWriteError creates a new sink write error
func NewSinkWriteError(sink string, message string, cause error) *SinkWriteError {
	return &SinkWriteError{
		baseError: baseError{
			code:    CodeSinkWrite,
			message: message,
			cause:   cause,
		},
		Sink: sink,
	}
}

// ConfigurationError represents errors in configuration files
type ConfigurationError struct {
	baseError
	Path string
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(path string, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			code:    CodeConfiguration,
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// ValidationError represents errors during validation
type ValidationError struct {
	baseError
	Field string
}

// NewValidationError creates a new validation error
func NewValidationError(field string, message string, cause error) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			code:    CodeValidation,
			message: message,
			cause:   cause,
		},
		Field: field,
	}
}

// CodeOf returns the code of the first ProfilerError in err's chain, or "" if none
func CodeOf(err error) string {
	var pe ProfilerError
	if errors.As(err, &pe) {
		return pe.Code()
	}
	return ""
}

// IsIdentityMismatch reports whether err is an identity mismatch
func IsIdentityMismatch(err error) bool {
	var target *IdentityMismatchError
	return errors.As(err, &target)
}

// IsNotStarted reports whether err is a not started error
func IsNotStarted(err error) bool {
	var target *NotStartedError
	return errors.As(err, &target)
}

// IsSinkWrite reports whether err is a sink write error
func IsSinkWrite(err error) bool {
	var target *SinkWriteError
	return errors.As(err, &target)
}

// IsRetryable reports whether the failed operation may succeed if repeated
func IsRetryable(err error) bool {
	return IsSinkWrite(err)
}
