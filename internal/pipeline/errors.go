package pipeline

import "fmt"

// Kind labels the failure classes an operation can report. Every error
// crossing the operation boundary renders as "{kind}: {message}".
type Kind string

const (
	// KindValidation covers missing or invalid input facts and structural
	// contract violations. Recoverable by correcting the input.
	KindValidation Kind = "ValidationError"
	// KindPermission covers unwritable output directories and blocked path
	// traversal. Fatal to the operation.
	KindPermission Kind = "PermissionError"
	// KindFormat covers a catalog file that is not a JSON array.
	KindFormat Kind = "FormatError"
	// KindRemoteCall covers a failed external generation call. Never
	// retried, never silently replaced with fallback copy.
	KindRemoteCall Kind = "RemoteCallError"
)

// Error is the single error type returned from an operation boundary.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// opError wraps err under a kind, passing an already-classified error
// through unchanged.
func opError(kind Kind, err error) *Error {
	if already, ok := err.(*Error); ok {
		return already
	}
	return &Error{Kind: kind, Err: err}
}

// opErrorf builds a classified error from a format string.
func opErrorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}
