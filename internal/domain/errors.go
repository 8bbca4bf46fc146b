package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches every UpstreamError with a 404 status.
	ErrNotFound = errors.New("upstream resource not found")
	// ErrInvalidArgument is returned before any upstream call when a request is malformed.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotAFile is returned when file content is requested for a directory.
	ErrNotAFile = errors.New("path does not point to a file")
)

// UpstreamError is a non-2xx answer from the GitHub API.
type UpstreamError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream responded %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// TransportError is a failure to reach the GitHub API at all, including cancellation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
