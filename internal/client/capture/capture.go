// Package capture records audio/video from a local device into timed
// fragments and assembles them into a single payload suitable for upload
// as a journal entry attachment.
//
// One Session owns one live device stream. The lifecycle is
//
//	Idle -> Recording <-> Paused -> Stopped
//
// with Error reachable only from Idle (device acquisition failure). A
// stopped session may record a further segment; each stop appends the new
// fragments onto the previously assembled payload.
package capture

import (
	"context"
	"time"
)

// Kind selects what the device should capture. A single state machine is
// parametrized by Kind instead of duplicating the recorder per media type.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
	KindBoth  Kind = "both"
)

// Constraints returns the device constraints for the kind.
func (k Kind) Constraints() Constraints {
	switch k {
	case KindAudio:
		return Constraints{Audio: true}
	case KindVideo:
		return Constraints{Video: true}
	default:
		return Constraints{Audio: true, Video: true}
	}
}

// MIME returns the media type the assembled payload is tagged with.
func (k Kind) MIME() string {
	if k == KindAudio {
		return "audio/webm"
	}
	return "video/webm"
}

// Constraints describes which tracks to request from the device.
type Constraints struct {
	Audio bool
	Video bool
}

// Stream is a live device handle. It is exclusively owned by one Session
// and must be released exactly once via StopAllTracks.
type Stream interface {
	StopAllTracks()
}

// Recorder slices a stream into timed binary fragments.
//
// Fragments arrive on Chunks in emission order. Chunks is closed after Stop
// flushes the final buffered fragment, or spontaneously if recording fails
// mid-flight, in which case Err reports the cause.
type Recorder interface {
	Start(interval time.Duration) error
	Pause() error
	Resume() error
	Stop() error
	Chunks() <-chan []byte
	Err() error
}

// Device acquires streams. Acquisition is the only operation with an
// externally visible side effect (OS permission prompt, in-use indicator),
// so implementations should not retry on their own.
type Device interface {
	RequestStream(ctx context.Context, c Constraints) (Stream, Recorder, error)
}

// Recording is a finished capture payload.
type Recording struct {
	Data []byte
	MIME string
	Kind Kind
}
