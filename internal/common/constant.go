// Package common contains shared constants, sentinel errors and small helpers
// used by both the Taskly client and server.
package common

// APIBasePath is the path prefix of every REST endpoint.
const APIBasePath = "/api"

// AuthorizationHeaderName carries the bearer token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme used for session tokens.
const BearerScheme = "Bearer"

// MinPasswordLength is the shortest password accepted at registration and
// on password change.
const MinPasswordLength = 6
