package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrRequest        = errors.New("request failed")
	ErrTransport      = errors.New("transport failed")
	ErrTokenNotFound  = errors.New("token not found")
	ErrSecretNotFound = errors.New("secret not found")
)

// RequestError is a non-2xx answer from the backend. A 401 unwraps to
// ErrAuthentication, everything else to ErrRequest.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *RequestError) Unwrap() error {
	if e.Status == 401 {
		return ErrAuthentication
	}
	return ErrRequest
}

// TransportError means no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("could not reach the server: %v", e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ValidationError names the missing or inconsistent input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Required(field, label string) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("%s is required", label)}
}
