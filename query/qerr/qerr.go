// Package qerr defines the structured error taxonomy shared by the query
// builder, validator, translator and executor.
package qerr

import (
	"errors"
	"fmt"
)

// Kind classifies a query error.
type Kind string

const (
	// KindInvalidValue marks malformed builder input (negative limit,
	// empty IN list, bad arity).
	KindInvalidValue Kind = "INVALID_VALUE"
	// KindInvalidSyntax marks failed validation or malformed generated SQL.
	KindInvalidSyntax Kind = "INVALID_SYNTAX"
	// KindInvalidOperator marks an unrecognized condition or aggregation
	// operator, which indicates an AST built outside the builder.
	KindInvalidOperator Kind = "INVALID_OPERATOR"
	// KindAdapterError marks a backend-reported failure such as a missing table.
	KindAdapterError Kind = "ADAPTER_ERROR"
	// KindTimeout marks an execution that exceeded the configured limit.
	KindTimeout Kind = "TIMEOUT"
)

// Error is a classified query error. Detail carries machine-readable
// context such as the offending SQL text or validator findings.
type Error struct {
	Kind    Kind
	Message string
	Detail  map[string]any
	cause   error
}

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind that unwraps to cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// WithDetail attaches one context entry and returns the same error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Detail == nil {
		e.Detail = make(map[string]any)
	}
	e.Detail[key] = value
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// KindOf reports the Kind of err, or "" when err carries no *Error.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return ""
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
