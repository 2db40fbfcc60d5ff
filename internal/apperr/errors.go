// Package apperr defines the error taxonomy shared by the repository and its callers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	// KindConnection reports an unreachable store or rejected credentials.
	KindConnection Kind = "CONNECTION"
	// KindValidation reports caller data that violates a precondition.
	KindValidation Kind = "VALIDATION"
	// KindQuery reports a query the store rejected or failed to run.
	KindQuery Kind = "QUERY"
)

// Error is a classified failure carrying the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	} else if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Connection wraps a connectivity failure.
func Connection(op string, cause error) *Error {
	return &Error{Kind: KindConnection, Op: op, Message: "graph store unavailable", Cause: cause}
}

// Validation builds a validation error with a formatted message.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Query wraps a store failure.
func Query(op string, cause error) *Error {
	return &Error{Kind: KindQuery, Op: op, Cause: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsConnection reports whether err is a connection error.
func IsConnection(err error) bool { return KindOf(err) == KindConnection }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsQuery reports whether err is a query error.
func IsQuery(err error) bool { return KindOf(err) == KindQuery }
