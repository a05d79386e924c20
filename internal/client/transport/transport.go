// Package transport performs the network calls of the gateway. The core
// depends only on the Transport interface; HTTPTransport is the net/http
// implementation.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes one outbound call.
//
// Body is JSON-encoded unless it is nil, a []byte or a string, which are
// sent as-is. Headers are applied verbatim.
type Request struct {
	Method  string
	URL     string
	Params  url.Values
	Body    any
	Headers map[string]string
}

// Clone returns a copy of r whose Headers map can be modified independently.
func (r Request) Clone() Request {
	c := r
	c.Headers = make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		c.Headers[k] = v
	}
	return c
}

// Response is a successful (2xx/3xx) reply. Body holds the full payload.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs a single call. A reply with status >= 400 is reported
// as *StatusError; network failures are returned as other errors.
type Transport interface {
	Call(ctx context.Context, req Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req Request) (*Response, error)

func (f TransportFunc) Call(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// StatusError is a reply with an error status. Message is the server's
// "error" field when the body carried one.
type StatusError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
