package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a reply is read into memory.
	maxBodyBytes int64 = 10 << 20
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport sends Requests with an HTTPDoer.
type HTTPTransport struct {
	client HTTPDoer
}

// NewHTTPTransport wraps client. If client is nil, an *http.Client with a
// 30s timeout is used.
func NewHTTPTransport(client HTTPDoer) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Call(ctx context.Context, r Request) (*Response, error) {
	target, err := buildURL(r.URL, r.Params)
	if err != nil {
		return nil, err
	}

	body, err := encodeBody(r.Body)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(payload),
			Body:       payload,
		}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: payload}, nil
}

func buildURL(raw string, params url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid request url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid request url %q: not absolute", raw)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// serverMessage extracts {"error": "..."} from an error reply.
func serverMessage(payload []byte) string {
	var e struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(payload, &e); err != nil {
		return ""
	}
	switch v := e.Error.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 reply.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
