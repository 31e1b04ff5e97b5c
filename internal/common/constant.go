package common

// AuthorizationHeaderName is the HTTP header / gRPC metadata key that carries
// the bearer token.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token in the authorization header.
const BearerPrefix = "Bearer "

// UndecryptablePlaceholder replaces chat content that fails authentication.
const UndecryptablePlaceholder = "[message could not be decrypted]"
