package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry lifecycle violations.
var (
	ErrPublished    = errors.New("registry already published")
	ErrNotPublished = errors.New("registry not published")
)

// SpecError is a fatal error in a declaration, reported at compile time.
// It names the offending key or parameter and, when the declaration came
// from a YAML document, carries the source position.
type SpecError struct {
	Msg    string
	Key    string // offending key or parameter name, if any
	Line   int    // 1-based, 0 if unknown
	Column int    // 1-based, 0 if unknown
}

// Error returns the message prefixed with the source position, if known.
func (e *SpecError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return e.Msg
}

// specErr creates a SpecError without a source position.
func specErr(key, format string, args ...any) *SpecError {
	return &SpecError{Msg: fmt.Sprintf(format, args...), Key: key}
}

// FieldError is a runtime validation failure raised by a generated wrapper
// or a schema check. It always names the offending field.
type FieldError struct {
	Field string
	Msg   string
	Err   error // underlying decode error, if any
}

// Error returns the field name and message.
func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parameter '%s': %s: %v", e.Field, e.Msg, e.Err)
	}
	return fmt.Sprintf("parameter '%s': %s", e.Field, e.Msg)
}

// Unwrap returns the underlying decode error.
func (e *FieldError) Unwrap() error { return e.Err }

// fieldErr creates a FieldError without an underlying cause.
func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
