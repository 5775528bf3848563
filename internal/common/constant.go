// Package common contains shared constants and sentinel errors used across
// tj2 components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token
// on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// AttachmentKeyHeaderName carries the client correlation key on binary
// upload requests so the server can echo it back in the confirmed record.
const AttachmentKeyHeaderName = "X-Attached-Key"
