package storybot

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before any call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// TransportError reports a failed call or a non-success HTTP status.
// StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("API Error: %v", e.Err)
	}
	return fmt.Sprintf("API Error: %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EnvelopeError reports a success response without candidate text.
type EnvelopeError struct {
	Err error
}

func (e *EnvelopeError) Error() string { return "Unexpected response format" }

func (e *EnvelopeError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// IsEnvelope reports whether err is an EnvelopeError.
func IsEnvelope(err error) bool {
	var e *EnvelopeError
	return errors.As(err, &e)
}
