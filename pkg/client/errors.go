package client

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when the advisory rate limiter drops an ask;
// sends are never queued.
var ErrBusy = errors.New("askdb: a request is already in flight")

// ErrUnsupportedContentType marks replies with a content type the
// client does not recognize; they are rejected, never silently
// swallowed.
var ErrUnsupportedContentType = errors.New("askdb: unsupported response content type")

// APIError is a non-2xx backend reply. Every caller joined to the same
// deduplicated request receives the identical error value.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("askdb: %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("askdb: %s: status %d: %s", e.Endpoint, e.Status, e.Body)
}
