package client

import "errors"

// Sentinels callers branch on with errors.Is. ErrUnavailable in particular
// drives the CLI's offline mode: a save that cannot reach the server keeps
// the entry and its upload queue local.
var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
