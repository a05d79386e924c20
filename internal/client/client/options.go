package client

import (
	"net/url"
)

type requestOptions struct {
	params     url.Values
	body       any
	headers    map[string]string
	withAccess bool
}

// Option customises a single dispatched call.
type Option func(*requestOptions)

// WithParams adds query parameters.
func WithParams(p url.Values) Option {
	return func(o *requestOptions) {
		o.params = p
	}
}

// WithBody sets the request payload. Values other than []byte and string
// are sent as JSON.
func WithBody(body any) Option {
	return func(o *requestOptions) {
		o.body = body
	}
}

// WithHeaders merges h into the request headers. They are applied last and
// override the defaults, Authorization included.
func WithHeaders(h map[string]string) Option {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(h))
		}
		for k, v := range h {
			o.headers[k] = v
		}
	}
}

// WithoutAccessToken sends the call without the access credential. Such a
// call never triggers a refresh.
func WithoutAccessToken() Option {
	return func(o *requestOptions) {
		o.withAccess = false
	}
}
