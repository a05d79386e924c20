package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Call_Success(t *testing.T) {
	var (
		gotMethod string
		gotQuery  url.Values
		gotHeader http.Header
		gotBody   map[string]any
	)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.Query()
		gotHeader = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("X-Trace", "t-1")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":7}`)
	}))
	defer ts.Close()

	tr := NewHTTPTransport(ts.Client())
	resp, err := tr.Call(context.Background(), Request{
		Method:  "post",
		URL:     ts.URL + "/items?x=1",
		Params:  url.Values{"page": {"2"}},
		Body:    map[string]string{"name": "n"},
		Headers: map[string]string{"Authorization": "Bearer A1"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "1", gotQuery.Get("x"))
	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "Bearer A1", gotHeader.Get("Authorization"))
	assert.Equal(t, "n", gotBody["name"])

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "t-1", resp.Header.Get("X-Trace"))
	assert.JSONEq(t, `{"id":7}`, string(resp.Body))

	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, 7, out.ID)
}

func TestHTTPTransport_Call_RawBodies(t *testing.T) {
	var got []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = append(got, string(b))
	}))
	defer ts.Close()

	tr := NewHTTPTransport(nil)
	_, err := tr.Call(context.Background(), Request{Method: http.MethodPut, URL: ts.URL, Body: []byte("raw")})
	require.NoError(t, err)
	_, err = tr.Call(context.Background(), Request{Method: http.MethodPut, URL: ts.URL, Body: "text"})
	require.NoError(t, err)
	_, err = tr.Call(context.Background(), Request{URL: ts.URL})
	require.NoError(t, err)

	assert.Equal(t, []string{"raw", "text", ""}, got)
}

func TestHTTPTransport_Call_StatusError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "401 with message", status: http.StatusUnauthorized, body: `{"error":"token expired"}`, message: "token expired"},
		{name: "500 without json", status: http.StatusInternalServerError, body: "oops", message: ""},
		{name: "400 non-string error", status: http.StatusBadRequest, body: `{"error":{"code":3}}`, message: "map[code:3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			_, err := NewHTTPTransport(nil).Call(context.Background(), Request{URL: ts.URL})

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.message, se.Message)
			assert.Equal(t, tt.body, string(se.Body))
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Equal(t, tt.status == http.StatusUnauthorized, IsUnauthorized(err))
		})
	}
}

func TestHTTPTransport_Call_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	_, err := NewHTTPTransport(nil).Call(context.Background(), Request{URL: ts.URL})
	require.ErrorContains(t, err, "request failed")
	assert.Zero(t, StatusCode(err))
}

func TestHTTPTransport_Call_BadURL(t *testing.T) {
	_, err := NewHTTPTransport(nil).Call(context.Background(), Request{URL: "/relative"})
	require.ErrorContains(t, err, "not absolute")

	_, err = NewHTTPTransport(nil).Call(context.Background(), Request{URL: "http://h/%zz"})
	require.ErrorContains(t, err, "invalid request url")
}

func TestHTTPTransport_Call_UnencodableBody(t *testing.T) {
	_, err := NewHTTPTransport(nil).Call(context.Background(), Request{URL: "http://example.invalid", Body: make(chan int)})
	require.ErrorContains(t, err, "failed to encode request body")
}

func TestHTTPTransport_Call_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPTransport(nil).Call(ctx, Request{URL: ts.URL})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequest_Clone(t *testing.T) {
	r := Request{Method: "GET", URL: "http://h", Headers: map[string]string{"A": "1"}}
	c := r.Clone()
	c.Headers["A"] = "2"

	assert.Equal(t, "1", r.Headers["A"])
	assert.Equal(t, "2", c.Headers["A"])
}

func TestTransportFunc(t *testing.T) {
	var tr Transport = TransportFunc(func(ctx context.Context, req Request) (*Response, error) {
		return &Response{StatusCode: 204}, nil
	})
	resp, err := tr.Call(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
