package common

const (
	// AuthorizationHeaderName carries the bearer token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the opaque token in the Authorization header.
	BearerPrefix = "Bearer "

	// SessionTokenBytes is the entropy of an issued session token.
	SessionTokenBytes = 32
)
