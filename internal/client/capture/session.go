package capture

import (
	"context"
	"sync"
	"time"

	"github.com/DAC098/tj2/internal/logging"
)

// State is the session lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StatePaused    State = "paused"
	StateStopped   State = "stopped"
	StateError     State = "error"
)

// DefaultSliceInterval is how often the recorder emits a fragment while
// recording is active.
const DefaultSliceInterval = time.Second

// Options tunes a Session. The zero value is usable.
type Options struct {
	// Interval is the fragment slicing interval; DefaultSliceInterval if zero.
	Interval time.Duration
	// Logger receives recorder diagnostics; discarded if nil.
	Logger logging.Logger
	// OnLevel, if set, receives periodic peak-amplitude readings for a
	// level indicator.
	OnLevel func(float64)
	// MeterInterval is how often OnLevel fires.
	MeterInterval time.Duration
}

// Session owns one device stream and accumulates its fragments.
//
// All mutation happens through Start/Pause/Resume/Stop/Record rather than
// shared mutable cells, so ownership of the stream and buffers stays with
// the session value itself.
type Session struct {
	kind Kind
	dev  Device
	opts Options
	log  logging.Logger

	// stopMu serializes Stop and Record so duplicate stop requests and
	// segment restarts cannot interleave.
	stopMu sync.Mutex

	mu          sync.Mutex
	state       State
	stream      Stream
	rec         Recorder
	meter       *Meter
	release     *sync.Once
	collectDone chan struct{}
	stopReq     bool
	chunks      [][]byte
	assembled   []byte
	recErr      error
}

// Start acquires a device stream for kind and begins recording.
//
// On acquisition failure the returned session is left in StateError (the UI
// retries by creating a new session, never by resuming this one) and the
// error classifies the failure; see StatusMessage.
func Start(ctx context.Context, dev Device, kind Kind, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultSliceInterval
	}

	s := &Session{
		kind:  kind,
		dev:   dev,
		opts:  opts,
		log:   log.With("component", "capture", "kind", string(kind)),
		state: StateIdle,
	}

	if err := s.acquire(ctx); err != nil {
		s.mu.Lock()
		s.state = StateError
		s.recErr = err
		s.mu.Unlock()
		s.log.Error(ctx, "device acquisition failed", "error", err)
		return s, err
	}
	return s, nil
}

// acquire requests the stream, starts the recorder and the fragment
// collector, and moves the session into StateRecording.
func (s *Session) acquire(ctx context.Context) error {
	stream, rec, err := s.dev.RequestStream(ctx, s.kind.Constraints())
	if err != nil {
		return err
	}

	if err := rec.Start(s.opts.Interval); err != nil {
		stream.StopAllTracks()
		return err
	}

	done := make(chan struct{})

	s.mu.Lock()
	s.stream = stream
	s.rec = rec
	s.release = &sync.Once{}
	s.collectDone = done
	s.stopReq = false
	s.meter = newMeter(s.opts.MeterInterval, s.opts.OnLevel)
	s.state = StateRecording
	s.mu.Unlock()

	go s.collect(rec, done)
	return nil
}

func (s *Session) collect(rec Recorder, done chan struct{}) {
	defer close(done)

	for chunk := range rec.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		s.mu.Lock()
		s.chunks = append(s.chunks, chunk)
		meter := s.meter
		s.mu.Unlock()
		if meter != nil {
			meter.Observe(chunk)
		}
	}

	s.mu.Lock()
	requested := s.stopReq
	s.mu.Unlock()
	if requested {
		return
	}

	// The recorder terminated without a stop request: the device failed
	// mid-recording. Close out the segment so the stream is released and
	// everything captured so far is preserved.
	err := rec.Err()
	s.log.Warn(context.Background(), "recorder terminated unexpectedly", "error", err)
	s.finishSegment(err)
}

// finishSegment releases the stream, stops the meter, and folds the
// segment's fragments into the assembled payload. Stream release is
// unconditional and happens before anything else so a caller is never
// notified while the device is still held.
func (s *Session) finishSegment(err error) {
	s.mu.Lock()
	stream := s.stream
	release := s.release
	meter := s.meter
	s.mu.Unlock()

	if release != nil {
		release.Do(stream.StopAllTracks)
	}
	if meter != nil {
		meter.Stop()
	}

	s.mu.Lock()
	s.assembled = Assemble(s.chunks, s.assembled)
	s.chunks = nil
	s.state = StateStopped
	if err != nil {
		s.recErr = err
	}
	s.mu.Unlock()
}

// Pause suspends fragment emission. Only honored in StateRecording.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return ErrNotRecording
	}
	if err := s.rec.Pause(); err != nil {
		return err
	}
	s.state = StatePaused
	return nil
}

// Resume continues fragment emission. Only honored in StatePaused.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return ErrNotPaused
	}
	if err := s.rec.Resume(); err != nil {
		return err
	}
	s.state = StateRecording
	return nil
}

// Stop ends the active segment: flushes the recorder, releases the device
// stream, assembles the fragments onto any previously assembled payload,
// and returns the finished recording.
//
// Stop is idempotent: on an already stopped session it returns the existing
// payload without emitting fragments or re-releasing the stream. In
// StateIdle or StateError it is a no-op.
func (s *Session) Stop() (Recording, error) {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	s.mu.Lock()
	switch s.state {
	case StateRecording, StatePaused:
		s.stopReq = true
		rec := s.rec
		done := s.collectDone
		s.mu.Unlock()

		_ = rec.Stop()
		<-done
		s.finishSegment(nil)
		return s.Recording(), s.Err()

	case StateStopped:
		s.mu.Unlock()
		return s.Recording(), s.Err()

	default:
		s.mu.Unlock()
		return Recording{}, nil
	}
}

// Record begins a further segment on a stopped session. The device stream
// is re-acquired (the previous one was released on stop); the next Stop
// appends the new fragments onto the existing assembled payload.
//
// On re-acquisition failure the session stays in StateStopped so the
// already assembled payload remains available.
func (s *Session) Record(ctx context.Context) error {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		return ErrNotStopped
	}
	s.mu.Unlock()

	if err := s.acquire(ctx); err != nil {
		s.log.Error(ctx, "device re-acquisition failed", "error", err)
		return err
	}
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the acquisition or mid-recording error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recErr
}

// Recording returns the payload assembled so far, tagged with the MIME
// type for the session's capture kind.
func (s *Session) Recording() Recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Recording{Data: s.assembled, MIME: s.kind.MIME(), Kind: s.kind}
}

// Level reports the current meter reading, 0 when no segment is active.
func (s *Session) Level() float64 {
	s.mu.Lock()
	meter := s.meter
	s.mu.Unlock()
	if meter == nil {
		return 0
	}
	return meter.Level()
}
