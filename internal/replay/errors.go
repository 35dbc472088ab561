package replay

import "fmt"

// Code classifies failures raised while turning a replay into tables.
type Code int

const (
	// CodeStreamDecode marks a fatal failure of the event source, including
	// game events whose fields fail validation.
	CodeStreamDecode Code = iota + 1
	// CodeEntityLookupMiss marks a player or weapon that no longer resolves in
	// the entity directory. Non-fatal.
	CodeEntityLookupMiss
	// CodeUnknownUtilityClass marks a weapon class absent from the utility
	// classification table. Non-fatal and expected.
	CodeUnknownUtilityClass
	// CodeSinkWrite marks a failed append or close on a table sink. Fatal.
	CodeSinkWrite
)

func (c Code) String() string {
	switch c {
	case CodeStreamDecode:
		return "stream_decode"
	case CodeEntityLookupMiss:
		return "entity_lookup_miss"
	case CodeUnknownUtilityClass:
		return "unknown_utility_class"
	case CodeSinkWrite:
		return "sink_write"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Fatal reports whether an error with this code must abort processing.
func (c Code) Fatal() bool {
	return c == CodeStreamDecode || c == CodeSinkWrite
}

// Error is the coded error type of the extraction engine.
type Error struct {
	Code    Code   // Machine-readable classification
	Message string // What was being done when it failed
	Cause   error  // Wrapped underlying error
}

// Sentinels for errors.Is checks by code.
var (
	ErrStreamDecode        = &Error{Code: CodeStreamDecode}
	ErrEntityLookupMiss    = &Error{Code: CodeEntityLookupMiss}
	ErrUnknownUtilityClass = &Error{Code: CodeUnknownUtilityClass}
	ErrSinkWrite           = &Error{Code: CodeSinkWrite}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a coded error without a cause.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error around an underlying cause. A nil cause yields nil.
func Wrap(code Code, message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: cause}
}
