// Package errorkinds defines the error taxonomy shared by the session
// and its platform adapters.
package errorkinds

import (
	"errors"
	"fmt"
)

// General errors returned by the session and the adapters.
var (
	// ErrSessionNotEnabled indicates an operation that requires an
	// active session was invoked before the session was enabled.
	ErrSessionNotEnabled = errors.New("media session is not enabled")

	// ErrSessionNotExist indicates the adapter's backing connection
	// was closed or never established.
	ErrSessionNotExist = errors.New("session does not exist")

	// ErrNotSupported indicates an operation that is not supported
	// on the current platform.
	ErrNotSupported = errors.New("operation is not supported on this platform")
)

// The stable operation codes carried by a NativeError.
const (
	CodeEnableFailed         = "ENABLE_FAILED"
	CodeUpdateMetadataFailed = "UPDATE_METADATA_FAILED"
	CodeUpdateStateFailed    = "UPDATE_STATE_FAILED"
)

// ValidationError reports a payload that failed validation before any
// native call was made. Field holds the path of the offending field.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a string representation of the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidation returns a ValidationError for the given field path.
func NewValidation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether the error is a validation error.
func IsValidation(err error) bool {
	var verr *ValidationError

	return errors.As(err, &verr)
}

// NativeError wraps a native-layer failure with a stable operation code
// suitable for programmatic branching.
type NativeError struct {
	Code  string
	Cause error
}

// Error returns a string representation of the native error.
func (e *NativeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Cause)
}

// Unwrap returns the underlying native failure.
func (e *NativeError) Unwrap() error {
	return e.Cause
}

// GenericError describes an error that is published to the global
// error event stream.
type GenericError struct {
	// Message holds a human-readable description of the error.
	Message string `json:"message,omitempty" codec:"message,omitempty" doc:"A human-readable description of the error."`

	// Origin indicates where the error occurred.
	Origin string `json:"origin,omitempty" codec:"origin,omitempty" doc:"Where the error occurred."`

	// Err holds the underlying error.
	Err error `json:"-" codec:"-"`
}

// Error returns a string representation of the generic error.
func (e GenericError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}

	return e.Message
}
