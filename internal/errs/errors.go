// Package errs provides the error type shared by every stage of the audit.
//
// Each stage wraps the errors it cannot handle into *errs.Error so callers
// can decide, by kind, whether to abort, skip or report:
//
//	// configuration problems are fatal
//	return errs.Wrap(errs.ErrKindConfig, "cannot read rules", err)
//
//	// check problems are captured per reference
//	if errs.IsCheck(res.Err) { ... }
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error by the stage that produced it.
type ErrKind int

const (
	ErrKindUnknown       ErrKind = iota
	ErrKindConfig                // malformed or missing rules document
	ErrKindTemplate              // rule template that cannot be applied
	ErrKindIntrospection         // metadata query failure
	ErrKindCheck                 // generated check statement failed
	ErrKindCleanup               // generated DELETE/UPDATE failed
	ErrKindUnavailable           // optional collaborator not present
	ErrKindInvalidInput          // bad arguments from the caller
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConfig:
		return "config"
	case ErrKindTemplate:
		return "template"
	case ErrKindIntrospection:
		return "introspection"
	case ErrKindCheck:
		return "check"
	case ErrKindCleanup:
		return "cleanup"
	case ErrKindUnavailable:
		return "unavailable"
	case ErrKindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned across the module.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func IsConfig(err error) bool {
	return KindOf(err) == ErrKindConfig
}

func IsTemplate(err error) bool {
	return KindOf(err) == ErrKindTemplate
}

func IsIntrospection(err error) bool {
	return KindOf(err) == ErrKindIntrospection
}

func IsCheck(err error) bool {
	return KindOf(err) == ErrKindCheck
}

func IsCleanup(err error) bool {
	return KindOf(err) == ErrKindCleanup
}

// IsUnavailable reports whether an optional collaborator (such as a model
// resolver without a host platform) declined to answer.
func IsUnavailable(err error) bool {
	return KindOf(err) == ErrKindUnavailable
}

func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// KindOf extracts the ErrKind from the first *Error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
