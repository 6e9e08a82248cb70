package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bjaus/contract"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// NotFoundError reports a path with no route.
type NotFoundError struct {
	Path string
}

// Error returns the path.
func (e *NotFoundError) Error() string { return fmt.Sprintf("no such path: %s", e.Path) }

// StatusCode returns 404.
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// MethodNotAllowedError reports a known path without the requested verb.
type MethodNotAllowedError struct {
	Path string
	Verb string
}

// Error returns the verb and path.
func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed on %s", e.Verb, e.Path)
}

// StatusCode returns 405.
func (e *MethodNotAllowedError) StatusCode() int { return http.StatusMethodNotAllowed }

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string            `json:"type,omitempty"`
	Title    string            `json:"title,omitempty"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// ValidationError describes a single parameter validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorStatus extracts the HTTP status code from an error. Validation
// failures raised by a dispatch routine map to 400; everything else
// without an explicit status is a 500.
func errorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	var fe *contract.FieldError
	if errors.As(err, &fe) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// problemFromError converts any dispatch error into a ProblemDetail.
func problemFromError(err error, instance string) *ProblemDetail {
	var pd *ProblemDetail
	if errors.As(err, &pd) {
		return pd
	}

	status := errorStatus(err)
	problem := &ProblemDetail{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   err.Error(),
		Instance: instance,
	}

	var fe *contract.FieldError
	if errors.As(err, &fe) {
		problem.Errors = []ValidationError{{Field: fe.Field, Message: fe.Msg}}
	}
	return problem
}
