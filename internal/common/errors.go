package common

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so callers can decide whether a retry is safe.
type Kind string

const (
	// KindValidation is malformed input, rejected before any write.
	KindValidation Kind = "validation"
	// KindStateConflict is an operation against an aggregate in the wrong
	// status. Never auto-retried; the caller must re-fetch current state.
	KindStateConflict Kind = "state_conflict"
	// KindNotFound is a dangling reference. Fatal for that call.
	KindNotFound Kind = "not_found"
	// KindTransactionAbort is a concurrent write conflict. The whole
	// operation had no effect and may be retried once after re-reading.
	KindTransactionAbort Kind = "transaction_abort"
)

// Error is the structured error every engine operation returns for
// business-rule failures. Infrastructure failures are wrapped with %w and
// carry no Kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindStateConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Abortf(format string, args ...any) *Error {
	return &Error{Kind: KindTransactionAbort, Message: fmt.Sprintf(format, args...)}
}

// KindOf unwraps err and returns its Kind, or "" for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
