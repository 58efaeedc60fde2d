package gallery

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidSelection is returned when neither tag group has a selected tag.
	ErrInvalidSelection = errors.New("no category selected")

	// ErrMalformedResponse is returned when the API body is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed response")
)

// NetworkError wraps a transport-level failure, including timeouts.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError reports a non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IOError wraps a local file failure (temp files, saved images).
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
