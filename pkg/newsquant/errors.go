package newsquant

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedJSON is wrapped in a TransportFailedError when the
	// response body cannot be parsed as JSON.
	ErrMalformedJSON = errors.New("response is not valid JSON")

	// ErrNotArray is wrapped in a TransportFailedError when the response
	// body is valid JSON but not an array of items.
	ErrNotArray = errors.New("response is not a JSON array")
)

// RequestFailedError reports that the scan endpoint answered with a
// non-success status.
type RequestFailedError struct {
	StatusCode int
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// TransportFailedError reports that the request could not complete or its
// body could not be decoded. Error returns the underlying message unchanged.
type TransportFailedError struct {
	Err error
}

func (e *TransportFailedError) Error() string {
	if e.Err == nil {
		return "transport failed"
	}
	return e.Err.Error()
}

func (e *TransportFailedError) Unwrap() error { return e.Err }
