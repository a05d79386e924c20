// Package common contains constants, sentinel errors and small helpers shared
// by the gophgate client and the development auth server.
package common

const (
	// AuthorizationHeader carries the bearer access credential on HTTP requests.
	AuthorizationHeader = "Authorization"

	// AuthorizationMetadataKey is the gRPC metadata key for the same value.
	// gRPC metadata keys are lower case.
	AuthorizationMetadataKey = "authorization"

	// BearerPrefix precedes the access credential in the Authorization value.
	BearerPrefix = "Bearer "

	ContentTypeHeader = "Content-Type"
	ContentTypeJSON   = "application/json"
)

// BearerValue formats an Authorization header value for token.
func BearerValue(token string) string {
	return BearerPrefix + token
}
