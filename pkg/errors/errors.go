// Package errors defines the typed errors surfaced by the mapper runtime.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies a runtime error
type ErrorType string

const (
	// Resolution errors
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"
	ErrorTypeUnboundRecord ErrorType = "UNBOUND_RECORD_TYPE"

	// Dispatch errors
	ErrorTypeSession    ErrorType = "SESSION"
	ErrorTypeDelegation ErrorType = "DELEGATION"
)

// RuntimeError is the error value produced by this module. Errors raised by
// the external engine or by a concrete mapper target are never converted into
// a RuntimeError; they propagate as their original values.
type RuntimeError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// WithCause wraps an underlying error
func (e *RuntimeError) WithCause(err error) *RuntimeError {
	e.Cause = err
	return e
}

// Constructor functions for the error taxonomy

// NewConfigurationError reports an unknown environment identifier or an
// otherwise unusable runtime configuration. The message should name the
// missing identifier so the failure reads as a configuration mistake.
func NewConfigurationError(message string) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}

// NewUnboundRecordTypeError reports a record type that has no registered
// mapper contract.
func NewUnboundRecordTypeError(recordType string) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorTypeUnboundRecord,
		Message: fmt.Sprintf("no mapper contract bound for record type %s", recordType),
	}
}

// NewSessionError reports a failure of the session lifecycle itself (open or
// close), as opposed to a failure of the delegated operation.
func NewSessionError(operation string, err error) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorTypeSession,
		Message: fmt.Sprintf("session %s failed", operation),
		Cause:   err,
	}
}

// Helper functions

// GetRuntimeError extracts a RuntimeError from an error chain
func GetRuntimeError(err error) *RuntimeError {
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return rtErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	rtErr := GetRuntimeError(err)
	return rtErr != nil && rtErr.Type == errType
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return IsType(err, ErrorTypeConfiguration)
}

// IsUnboundRecordType checks if an error is an unbound record type error
func IsUnboundRecordType(err error) bool {
	return IsType(err, ErrorTypeUnboundRecord)
}

// IsSession checks if an error is a session lifecycle error
func IsSession(err error) bool {
	return IsType(err, ErrorTypeSession)
}

// Wrap adds context to an error while preserving the original chain, so
// errors.Is and errors.As still reach the cause.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if rtErr := GetRuntimeError(err); rtErr != nil {
		rtErr.Message = fmt.Sprintf("%s: %s", message, rtErr.Message)
		return rtErr
	}

	return &RuntimeError{
		Type:    ErrorTypeDelegation,
		Message: message,
		Cause:   err,
	}
}
