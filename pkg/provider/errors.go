package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnsupportedProvider is returned when no provider is registered under the requested name.
	ErrUnsupportedProvider = errors.New("provider not supported")

	// ErrEmptyResponse is returned when the provider answered successfully but with no choices.
	ErrEmptyResponse = errors.New("empty response")
)

// TransportError is a failure to obtain any response from the provider
// (connection refused, TLS failure, cancelled context, unreadable body).
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer from the provider. Body is kept verbatim so the
// caller can show the provider's own diagnostic.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	status := fmt.Sprintf("%d", e.StatusCode)
	if text := http.StatusText(e.StatusCode); text != "" {
		status += " " + text
	}

	return fmt.Sprintf("%s error %s: %s", e.Provider, status, e.Body)
}

// ParseError is a 2xx answer whose body does not match the provider's response schema.
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s response could not be parsed: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
