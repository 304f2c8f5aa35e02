package smphttp

import (
	"fmt"

	"github.com/crewjam/httperr"
)

// TransportError is a network, TLS, body-read, or redirect-overflow
// failure. StatusCode is always 0, signaling a transport-level error as
// opposed to an HTTP response (see StatusError).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("smphttp: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode reports the diagnostic status code for this failure: always
// 0 for a TransportError.
func (e *TransportError) StatusCode() int { return 0 }

// StatusError is a non-200, non-redirect HTTP response. It embeds
// httperr.Response so callers that already know how to render an
// httperr.Response (e.g. as an HTTP body) can do so unchanged.
type StatusError struct {
	URL string
	httperr.Response
}

func newStatusError(url string, code int) *StatusError {
	return &StatusError{
		URL:      url,
		Response: httperr.Response{StatusCode: code, Err: fmt.Errorf("unexpected status code %d", code)},
	}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("smphttp: GET %s: %v", e.URL, e.Response.Err)
}

func (e *StatusError) Unwrap() error { return e.Response.Err }

// StatusCode reports the HTTP status code that caused this failure.
func (e *StatusError) StatusCode() int { return e.Response.StatusCode }
