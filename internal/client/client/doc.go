// Package client is the request dispatcher of gophgate.
//
// HTTPClient issues GET, POST, PUT and DELETE calls with the stored access
// credential attached. A call rejected with 401 is handed to the refresh
// coordinator, which renews the credential once for all concurrent callers
// and replays the call. UnaryInterceptor gives gRPC client connections the
// same behaviour for codes.Unauthenticated.
package client
