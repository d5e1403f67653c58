// Package apierror defines the error taxonomy shared by every handler and
// collaborator boundary (§7). It mirrors the `auth/errors.go` sentinel
// style and the `semantic/error_helpers.go` response-building pattern from
// the teacher, generalized from auth-specific errors to HTTP problem
// responses.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// ProblemError is an error carrying its own HTTP status and, optionally,
// a constrainedBy link target (LDP §4.7.4/§4.7.6 constraint violations).
type ProblemError struct {
	Status        int
	Title         string
	Detail        string
	ConstrainedBy string
	Err           error
}

func (e *ProblemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Title, e.Err)
	}
	return e.Title
}

func (e *ProblemError) Unwrap() error { return e.Err }

func newf(status int, title string, err error, format string, args ...any) *ProblemError {
	return &ProblemError{Status: status, Title: title, Detail: fmt.Sprintf(format, args...), Err: err}
}

// BadRequest wraps err as a 400, used for header-grammar and body parse
// failures (§4.1, §4.7.4).
func BadRequest(err error, format string, args ...any) *ProblemError {
	return newf(http.StatusBadRequest, "bad request", err, format, args...)
}

// NotFound is the 404 returned for missing resources and unresolvable
// memento versions (§4.6, §4.7.1).
func NotFound(format string, args ...any) *ProblemError {
	return newf(http.StatusNotFound, "not found", nil, format, args...)
}

// Gone is the 410 returned for a tombstoned resource (§3 invariant I3).
func Gone(format string, args ...any) *ProblemError {
	return newf(http.StatusGone, "gone", nil, format, args...)
}

// Conflict is the 409 returned for interaction-model retyping violations
// (§4.7.4, invariant I4, property P9) and non-empty container reuse.
func Conflict(format string, args ...any) *ProblemError {
	return newf(http.StatusConflict, "conflict", nil, format, args...)
}

// PreconditionFailed is the 412 returned for a failing If-Match/
// If-Unmodified-Since conditional (§4.7).
func PreconditionFailed(format string, args ...any) *ProblemError {
	return newf(http.StatusPreconditionFailed, "precondition failed", nil, format, args...)
}

// Forbidden is the 403 returned by the WebAC authorization filter (§4.4)
// when the session lacks the required access mode on an existing resource.
func Forbidden(format string, args ...any) *ProblemError {
	return newf(http.StatusForbidden, "forbidden", nil, format, args...)
}

// Unauthorized is the 401 returned by the WebAC authorization filter (§4.4)
// when anonymous access is denied and the agent has no session at all.
func Unauthorized(format string, args ...any) *ProblemError {
	return newf(http.StatusUnauthorized, "unauthorized", nil, format, args...)
}

// UnsupportedMediaType is the 415 returned when a PUT/POST body's
// Content-Type cannot be parsed by any registered RDF syntax (§4.2).
func UnsupportedMediaType(format string, args ...any) *ProblemError {
	return newf(http.StatusUnsupportedMediaType, "unsupported media type", nil, format, args...)
}

// NotAcceptable is the 406 returned when content negotiation finds no
// acceptable representation (§4.2).
func NotAcceptable(format string, args ...any) *ProblemError {
	return newf(http.StatusNotAcceptable, "not acceptable", nil, format, args...)
}

// RangeNotSatisfiable is the 416 returned by the Range grammar's overflow
// decision (§4.1, see DESIGN.md "Range overflow").
func RangeNotSatisfiable(format string, args ...any) *ProblemError {
	return newf(http.StatusRequestedRangeNotSatisfiable, "range not satisfiable", nil, format, args...)
}

// MethodNotAllowed is the 405 returned when a method doesn't apply to the
// resource's current interaction model (§4.7).
func MethodNotAllowed(format string, args ...any) *ProblemError {
	return newf(http.StatusMethodNotAllowed, "method not allowed", nil, format, args...)
}

// Internal wraps an unexpected collaborator failure as a 500, the fallback
// the Echo error handler applies to anything not already a *ProblemError
// (mirrors `http/server.go`'s CustomHTTPErrorHandler default case).
func Internal(err error, format string, args ...any) *ProblemError {
	return newf(http.StatusInternalServerError, "internal server error", err, format, args...)
}

// As extracts a *ProblemError from err, or synthesizes an Internal one if
// err isn't already classified.
func As(err error) *ProblemError {
	var pe *ProblemError
	if errors.As(err, &pe) {
		return pe
	}
	return Internal(err, "%v", err)
}
