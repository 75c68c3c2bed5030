// Package apperrors provides typed error handling for the voice bridge.
// It uses struct-based errors with separate user-safe and internal messages.
package apperrors

import (
	"fmt"
	"strings"
)

// Code categorizes errors for consistent handling across the application.
type Code int

// Error codes for categorizing application errors.
const (
	// CodeUnknown indicates an unspecified error type
	CodeUnknown Code = iota
	// CodeInvalidInput indicates a malformed request body
	CodeInvalidInput
	// CodeDecode indicates the audio transport encoding could not be decoded
	CodeDecode
	// CodeFormat indicates an unrecognized or corrupt audio container
	CodeFormat
	// CodeConversion is the umbrella for any normalization failure
	CodeConversion
	// CodeBackendTransport indicates the backend call itself failed
	CodeBackendTransport
	// CodeBackendLogical indicates the backend answered without usable data
	CodeBackendLogical
)

// User-facing messages for the opaque error kinds.
const (
	MsgConversionFailed      = "Audio conversion failed"
	MsgVoiceProcessingFailed = "Voice processing failed"
	MsgInternal              = "Internal server error"
)

// Error represents a domain error with separate user-safe and internal messages.
// The Message field is always safe to expose to clients.
// The Internal field contains debugging details and should only be logged.
type Error struct {
	Code     Code   // Error category for handler mapping
	Message  string // User-safe message (always exposable)
	Internal string // Internal details (for logging only)
	Err      error  // Wrapped underlying error
}

// Error implements the error interface.
// Returns the user-safe message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithInternal adds internal debugging details to the error.
func (e *Error) WithInternal(format string, args ...any) *Error {
	e.Internal = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Detail returns everything worth logging about the error, descending into
// wrapped application errors so their internal details are kept.
func (e *Error) Detail() string {
	parts := []string{e.Code.String()}
	if e.Internal != "" {
		parts = append(parts, e.Internal)
	}
	if e.Err != nil {
		if inner, ok := e.Err.(*Error); ok {
			parts = append(parts, inner.Detail())
		} else {
			parts = append(parts, e.Err.Error())
		}
	}
	if len(parts) == 1 {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, ": ")
}

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeUnknown:
		return "unknown"
	case CodeInvalidInput:
		return "invalid_input"
	case CodeDecode:
		return "decode"
	case CodeFormat:
		return "format"
	case CodeConversion:
		return "conversion"
	case CodeBackendTransport:
		return "backend_transport"
	case CodeBackendLogical:
		return "backend_logical"
	default:
		return fmt.Sprintf("unknown_code_%d", c)
	}
}

// Is reports whether target matches this error's code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// InvalidInput creates a new invalid input error with the given message.
func InvalidInput(message string) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Message: message,
	}
}

// Decode creates an error for payloads whose transport encoding is broken.
func Decode(internal string) *Error {
	return &Error{
		Code:     CodeDecode,
		Message:  "Audio payload is not valid base64",
		Internal: internal,
	}
}

// Format creates an error for unrecognized or corrupt audio containers.
func Format(internal string) *Error {
	return &Error{
		Code:     CodeFormat,
		Message:  "Audio format not recognized",
		Internal: internal,
	}
}

// Conversion wraps any normalization failure into the opaque umbrella error.
func Conversion(cause error) *Error {
	return &Error{
		Code:    CodeConversion,
		Message: MsgConversionFailed,
		Err:     cause,
	}
}

// BackendTransport creates an error for a backend call that did not complete.
// The message names the fault and is shown to the caller.
func BackendTransport(message string) *Error {
	return &Error{
		Code:    CodeBackendTransport,
		Message: message,
	}
}

// BackendLogical creates an error for a backend reply that lacks required data.
func BackendLogical(internal string) *Error {
	return &Error{
		Code:     CodeBackendLogical,
		Message:  MsgVoiceProcessingFailed,
		Internal: internal,
	}
}
