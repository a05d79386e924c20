package client

import (
	"errors"
	"fmt"
)

var ErrRequestFailed = errors.New("request failed")

// RequestError describes a call that failed for a reason other than an
// authentication failure that was recovered by a refresh.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{ErrRequestFailed, e.Err}
}
