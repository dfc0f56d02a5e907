// Package client provides error types for connection operations.
package client

import (
	"errors"

	"github.com/satishbabariya/tds-go/internal/core/command"
	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// Sentinel errors for common error conditions.
var (
	// ErrClosed indicates the connection was closed.
	ErrClosed = errors.New("tds: connection is closed")

	// ErrParameterCount indicates the arguments do not match the placeholders.
	ErrParameterCount = errdefs.ErrParameterCount

	// ErrUnknownParameter indicates a named parameter missing from the query.
	ErrUnknownParameter = errdefs.ErrUnknownParameter

	// ErrDataTruncation indicates a value did not fit its receive buffer.
	ErrDataTruncation = errdefs.ErrDataTruncation

	// ErrInvalidColumn indicates an unknown column index or name.
	ErrInvalidColumn = errdefs.ErrInvalidColumn

	// ErrInvalidState indicates an accessor used without a current result or row.
	ErrInvalidState = errdefs.ErrInvalidState

	// ErrExhausted indicates the cursor moved past the last row or result.
	ErrExhausted = errdefs.ErrExhausted

	// ErrUnsupportedType indicates a value type with no mapping.
	ErrUnsupportedType = errdefs.ErrUnsupportedType

	// ErrConversion indicates a value could not be converted.
	ErrConversion = errdefs.ErrConversion

	// ErrExecutionFailed indicates the server reported a failed command.
	ErrExecutionFailed = errdefs.ErrExecutionFailed
)

// ExecutionError carries the diagnostics of a failed command.
type ExecutionError = command.ExecutionError

// DriverError reports a failing session call.
type DriverError = wire.DriverError

// EncodeError reports a parameter that cannot be rendered as a literal.
type EncodeError = errdefs.EncodeError

// IsExecutionFailed checks if an error is a failed command.
func IsExecutionFailed(err error) bool {
	return errors.Is(err, ErrExecutionFailed)
}

// IsTruncation checks if an error is a data truncation.
func IsTruncation(err error) bool {
	return errors.Is(err, ErrDataTruncation)
}

// ServerMessage returns the diagnostic behind err, if any.
func ServerMessage(err error) (*Message, bool) {
	var de *wire.DriverError
	if errors.As(err, &de) && de.Message != nil {
		return de.Message, true
	}
	var m *wire.Message
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
