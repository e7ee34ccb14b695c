// Package serrors attaches a semantic kind to errors. The API derives the
// response status from the kind and the run worker derives whether a failed
// run is worth another attempt.
package serrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is a semantic error category. Kinds are sentinels created with NewKind
// and are matched with errors.Is or extracted with errors.As.
type Kind interface {
	error
	isKind()
}

type kind struct{ name string }

func (k kind) Error() string { return k.name }
func (k kind) isKind()       {}

// NewKind creates a kind named name. Kinds that are not registered below
// are reported as ErrInternal by KindOf.
func NewKind(name string) Kind { return kind{name: name} }

var (
	// ErrNotFound indicates the run or policy does not exist or belongs to another user.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
	// ErrForbidden indicates the caller may not perform the operation.
	ErrForbidden = NewKind("FORBIDDEN")
	// ErrBadRequest indicates invalid run parameters, observations or request bodies.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrConflict indicates the stored state does not allow the operation,
	// e.g. a policy artifact that no longer matches the environment.
	ErrConflict = NewKind("CONFLICT")
	// ErrInternal indicates an unexpected failure.
	ErrInternal = NewKind("INTERNAL")
	// ErrTimeout indicates the operation ran out of time.
	ErrTimeout = NewKind("TIMEOUT")
	// ErrUnavailable indicates a dependency is temporarily unavailable.
	ErrUnavailable = NewKind("UNAVAILABLE")
	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewKind("RATE_LIMITED")
)

type class struct {
	status int
	// permanent kinds fail the same way on every attempt
	permanent bool
}

//nolint: gochecknoglobals
var classes = map[Kind]class{
	ErrNotFound:     {status: http.StatusNotFound, permanent: true},
	ErrUnauthorized: {status: http.StatusUnauthorized, permanent: true},
	ErrForbidden:    {status: http.StatusForbidden, permanent: true},
	ErrBadRequest:   {status: http.StatusBadRequest, permanent: true},
	ErrConflict:     {status: http.StatusConflict, permanent: true},
	ErrInternal:     {status: http.StatusInternalServerError},
	ErrTimeout:      {status: http.StatusGatewayTimeout},
	ErrUnavailable:  {status: http.StatusServiceUnavailable},
	ErrRateLimited:  {status: http.StatusTooManyRequests},
}

// KindOf returns the registered kind carried by err, or ErrInternal.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		if _, ok := classes[k]; ok {
			return k
		}
	}

	return ErrInternal
}

// HTTPStatus maps the kind of err to an HTTP status code.
func HTTPStatus(err error) int { return classes[KindOf(err)].status }

// Permanent reports whether err is of a kind that retrying cannot fix.
// A nil error is not permanent.
func Permanent(err error) bool {
	return err != nil && classes[KindOf(err)].permanent
}

// Error is an error carrying a kind, an optional cause and an optional
// message. errors.Is and errors.As match both the kind and the cause chain.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With creates an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap creates an error of kind k wrapping err with a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates an error of kind k without message or cause.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error formats as "<msg>: <cause>", dropping whichever part is empty, and
// falls back to the kind name.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 2)
	if e.msg != "" {
		parts = append(parts, e.msg)
	}
	if e.err != nil {
		parts = append(parts, e.err.Error())
	}
	switch {
	case len(parts) > 0:
		return strings.Join(parts, ": ")
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}

	return errors.Is(e.kind, target) || errors.Is(e.err, target)
}

func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}

	return (e.kind != nil && errors.As(e.kind, target)) || (e.err != nil && errors.As(e.err, target))
}

// Kind returns the kind of e.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message of e without its cause.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped error, which may be nil.
func (e *Error) Cause() error { return e.err }
