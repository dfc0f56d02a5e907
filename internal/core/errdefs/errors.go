// Package errdefs defines the error taxonomy shared by the query and execution engine.
package errdefs

import (
	"errors"
	"fmt"
)

// Error types for engine operations.
var (
	// ErrParameterCount is returned when the supplied parameters do not match the placeholders.
	ErrParameterCount = errors.New("invalid parameter count")

	// ErrUnknownParameter is returned when a named parameter does not occur in the query.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrDataTruncation is returned when a fetched cell did not fit its receive buffer.
	ErrDataTruncation = errors.New("data truncation occurred")

	// ErrInvalidColumn is returned for an out of range column index or an unknown column name.
	ErrInvalidColumn = errors.New("invalid column index or name")

	// ErrInvalidState is returned when an accessor is used without a current result or row.
	ErrInvalidState = errors.New("invalid cursor state")

	// ErrExhausted is returned when the row cursor has moved past the last row.
	ErrExhausted = errors.New("result set exhausted")

	// ErrUnsupportedType is returned when a wire type has no semantic mapping.
	ErrUnsupportedType = errors.New("unsupported datatype")

	// ErrConversion is returned when a buffer cannot be converted to the requested type.
	ErrConversion = errors.New("conversion failed")

	// ErrExecutionFailed is returned when the server reported a failed command.
	ErrExecutionFailed = errors.New("query execution resulted in error")
)

// EncodeError is returned when a parameter value cannot be rendered as a SQL literal.
type EncodeError struct {
	Kind  string
	Cause error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode %s literal: %v", e.Kind, e.Cause)
}

// Unwrap returns the underlying error.
func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// ConversionError describes a failed conversion between two wire types.
type ConversionError struct {
	From   string
	To     string
	Reason string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s: %s", e.From, e.To, e.Reason)
}

// Is reports whether the target is ErrConversion.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// IsTruncation checks if an error is a data truncation error.
func IsTruncation(err error) bool {
	return errors.Is(err, ErrDataTruncation)
}

// IsExecutionFailed checks if an error reports a failed command.
func IsExecutionFailed(err error) bool {
	return errors.Is(err, ErrExecutionFailed)
}
