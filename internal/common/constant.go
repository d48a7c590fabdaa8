// Package common contains constants and sentinel errors shared by the
// bloodlink client layers.
package common

// Durable storage keys. Both values are plain strings with no versioning.
const (
	StorageKeyToken    = "token"
	StorageKeyUserRole = "userRole"
)

// Outbound HTTP headers.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
)

// DefaultAPIBaseURL is used when no API URL is configured.
const DefaultAPIBaseURL = "http://localhost:5000/api"

// DefaultChatBaseURL is the chat server origin used when none is configured.
const DefaultChatBaseURL = "http://localhost:5000"
