// Package faults defines the error taxonomy shared by the stores, the
// friendship workflow and the API layer. Callers branch on the Kind, the
// Reason is a stable human-readable denial reason.
package faults

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Unknown Kind = iota
	InvalidArgument
	NotFound
	Conflict
	Unauthenticated
	Forbidden
	Unavailable
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Unavailable:
		return "unavailable"
	case Internal:
		return "internal"
	}
	return "unknown"
}

type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(k Kind, reason string) *Error {
	return &Error{Kind: k, Reason: reason}
}

func Wrap(k Kind, reason string, err error) *Error {
	return &Error{Kind: k, Reason: reason, Err: err}
}

// KindOf reports the Kind carried by err, or Unknown for errors outside the
// taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// ReasonOf returns the stable denial reason, falling back to the Kind name so
// callers never leak wrapped internals to a client.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return Unknown.String()
}
