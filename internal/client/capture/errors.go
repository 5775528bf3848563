package capture

import "errors"

// Device acquisition failures, classified into a small taxonomy so the UI
// can show a specific message. None of these trigger an automatic retry;
// the user re-invokes acquisition explicitly with a new session.
var (
	ErrPermissionDenied = errors.New("device permission denied")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrAborted          = errors.New("device acquisition aborted")
)

// Session state errors.
var (
	ErrNotRecording = errors.New("session is not recording")
	ErrNotPaused    = errors.New("session is not paused")
	ErrNotStopped   = errors.New("session is not stopped")
)

// StatusMessage maps a device acquisition error to the user-facing status
// string shown inline in the recording dialog. The message is always
// non-empty for a non-nil error.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Access to the recording device was denied. Check your permission settings and try again."
	case errors.Is(err, ErrDeviceNotFound):
		return "No recording device was found. Connect a microphone or camera and try again."
	case errors.Is(err, ErrAborted):
		return "The recording request was cancelled before the device became available."
	default:
		return "The recording device could not be started."
	}
}
