package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrAuthExpired    = errors.New("authorization missing or expired")
	ErrAtBeginning    = errors.New("already at the first step")
	ErrVisionDisabled = errors.New("image extraction is not configured")
)

// FieldError is one failed field rule. Section labels the sub-object the field
// belongs to, for example "Pickup Details" or "Order #2".
type FieldError struct {
	Section string
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Section == "" {
		return e.Message
	}
	return e.Section + ": " + e.Message
}

// ValidationError aggregates field errors. The draft is kept and the flow does
// not advance.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return strings.Join(msgs, "; ")
}

// Lines returns the user-facing message of each field error.
func (e *ValidationError) Lines() []string {
	lines := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		lines[i] = f.Error()
	}
	return lines
}

// NewValidationError returns nil when fields is empty.
func NewValidationError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ParseError reports a template or extraction payload that does not have the
// expected shape.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// ExternalServiceError is a failed call to the delivery provider or the
// extraction service. Message is safe to show to the user.
type ExternalServiceError struct {
	Service string
	Op      string
	Message string
	Cause   error
}

func NewExternalServiceError(service, op, message string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Op: op, Message: message, Cause: cause}
}

func (e *ExternalServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s (cause: %v)", e.Service, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Service, e.Op, e.Message)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Cause
}

// StateError is an event that the session is not waiting for.
type StateError struct {
	Action Action
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("unexpected input while %s: %s", e.Action, e.Reason)
}
