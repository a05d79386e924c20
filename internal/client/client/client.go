package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophgate/internal/client/credentials"
	"github.com/dmitrijs2005/gophgate/internal/client/refresh"
	"github.com/dmitrijs2005/gophgate/internal/client/transport"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
)

// Dispatcher is the call surface used by services and the CLI.
type Dispatcher interface {
	Get(ctx context.Context, path string, opts ...Option) (*transport.Response, error)
	Post(ctx context.Context, path string, opts ...Option) (*transport.Response, error)
	Put(ctx context.Context, path string, opts ...Option) (*transport.Response, error)
	Delete(ctx context.Context, path string, opts ...Option) (*transport.Response, error)
}

type HTTPClient struct {
	baseURI     string
	store       credentials.Store
	transport   transport.Transport
	coordinator *refresh.Coordinator
	logger      logging.Logger
}

var _ Dispatcher = (*HTTPClient)(nil)

func NewHTTPClient(baseURI string, store credentials.Store, tr transport.Transport, coord *refresh.Coordinator, l logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURI:     baseURI,
		store:       store,
		transport:   tr,
		coordinator: coord,
		logger:      l.With("module", "client"),
	}
}

func (c *HTTPClient) Get(ctx context.Context, path string, opts ...Option) (*transport.Response, error) {
	return c.Do(ctx, http.MethodGet, path, opts...)
}

func (c *HTTPClient) Post(ctx context.Context, path string, opts ...Option) (*transport.Response, error) {
	return c.Do(ctx, http.MethodPost, path, opts...)
}

func (c *HTTPClient) Put(ctx context.Context, path string, opts ...Option) (*transport.Response, error) {
	return c.Do(ctx, http.MethodPut, path, opts...)
}

func (c *HTTPClient) Delete(ctx context.Context, path string, opts ...Option) (*transport.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, opts...)
}

// Do dispatches a call with an arbitrary method.
func (c *HTTPClient) Do(ctx context.Context, method, path string, opts ...Option) (*transport.Response, error) {
	o := requestOptions{withAccess: true}
	for _, opt := range opts {
		opt(&o)
	}

	req := transport.Request{
		Method: method,
		URL:    resolveURL(c.baseURI, path),
		Params: o.params,
		Body:   o.body,
		Headers: map[string]string{
			common.ContentTypeHeader: common.ContentTypeJSON,
		},
	}

	var access string
	if o.withAccess {
		var err error
		access, err = c.store.Get(ctx, credentials.AccessTokenKey)
		if err != nil {
			return nil, c.fail(ctx, req, fmt.Errorf("failed to read access credential: %w", err))
		}
		if access != "" {
			req.Headers[common.AuthorizationHeader] = common.BearerValue(access)
		}
	}

	for k, v := range o.headers {
		req.Headers[k] = v
	}

	c.logger.Debug(ctx, "dispatching", "method", method, "url", req.URL)

	resp, err := c.transport.Call(ctx, req)
	if err == nil {
		return resp, nil
	}

	// A 401 on a call sent without the access credential is routed only
	// when it comes from the refresh endpoint, which ends the session.
	if !transport.IsUnauthorized(err) || c.coordinator == nil ||
		(!o.withAccess && !c.coordinator.IsRefreshRequest(req)) {
		return nil, c.fail(ctx, req, err)
	}

	resp, err = c.coordinator.HandleAuthFailure(ctx, refresh.Call{
		Request:    req,
		Credential: access,
		Err:        err,
	})
	if err != nil {
		if errors.Is(err, refresh.ErrSessionTerminated) || errors.Is(err, refresh.ErrWaitTimeout) {
			return nil, err
		}
		return nil, c.fail(ctx, req, err)
	}
	return resp, nil
}

func (c *HTTPClient) fail(ctx context.Context, req transport.Request, err error) error {
	re := &RequestError{Method: req.Method, URL: req.URL, Err: err}

	var se *transport.StatusError
	if errors.As(err, &se) {
		re.StatusCode = se.StatusCode
		re.Message = se.Message
	}

	c.logger.Error(ctx, "request failed", "method", req.Method, "url", req.URL, "status", re.StatusCode, "error", err)
	return re
}

// resolveURL joins a relative path to base. Absolute URLs are returned as-is.
func resolveURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
