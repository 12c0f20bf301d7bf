package api

import (
	"errors"
	"fmt"
)

// FetchError reports a non-success status or a transport/decoding failure.
// Status is 0 when no response was received.
type FetchError struct {
	Path   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("GET %s: HTTP %d", e.Path, e.Status)
	}
	return fmt.Sprintf("GET %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Status
	}
	return 0
}
