package capture

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"
)

// readerRecorder slices a byte stream into timed fragments. It backs any
// device whose media arrives as an io.ReadCloser (the ffmpeg device, pipes
// in tests).
//
// A read loop accumulates bytes into a pending buffer; an emit loop flushes
// the buffer onto Chunks once per interval while recording is active. Bytes
// read while paused are discarded, mirroring how a paused media recorder
// drops its input rather than buffering it.
type readerRecorder struct {
	src      io.ReadCloser
	cause    func() error
	interval time.Duration

	mu      sync.Mutex
	pending []byte
	paused  bool
	readErr error

	chunks   chan []byte
	stopCh   chan struct{}
	readDone chan struct{}
	emitDone chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewReaderRecorder returns a Recorder that slices src into fragments.
// Closing/stopping the recorder closes src.
func NewReaderRecorder(src io.ReadCloser) Recorder {
	return newReaderRecorder(src, nil)
}

// newReaderRecorder additionally takes cause, consulted when src drains on
// its own so the device can report why its stream ended.
func newReaderRecorder(src io.ReadCloser, cause func() error) *readerRecorder {
	return &readerRecorder{
		src:      src,
		cause:    cause,
		chunks:   make(chan []byte),
		stopCh:   make(chan struct{}),
		readDone: make(chan struct{}),
		emitDone: make(chan struct{}),
	}
}

func (r *readerRecorder) Start(interval time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return errors.New("recorder already started")
	}
	if interval <= 0 {
		interval = DefaultSliceInterval
	}
	r.interval = interval
	r.started = true

	go r.readLoop()
	go r.emitLoop()
	return nil
}

func (r *readerRecorder) readLoop() {
	defer close(r.readDone)

	buf := make([]byte, 32*1024)
	for {
		n, err := r.src.Read(buf)
		if n > 0 {
			r.mu.Lock()
			if !r.paused {
				r.pending = append(r.pending, buf[:n]...)
			}
			r.mu.Unlock()
		}
		if err != nil {
			r.recordFailure(err)
			return
		}
	}
}

// recordFailure settles readErr when the source ends. A source closed by
// Stop is never an error; a source that drained on its own is an error only
// if the device reports a cause for the stream ending.
func (r *readerRecorder) recordFailure(err error) {
	switch {
	case errors.Is(err, io.ErrClosedPipe), errors.Is(err, os.ErrClosed):
		return
	case errors.Is(err, io.EOF):
		if r.cause == nil {
			return
		}
		if err = r.cause(); err == nil {
			return
		}
	}

	r.mu.Lock()
	r.readErr = err
	r.mu.Unlock()
}

func (r *readerRecorder) emitLoop() {
	defer close(r.emitDone)
	defer close(r.chunks)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flush(false)
		case <-r.stopCh:
			r.flush(true)
			return
		case <-r.readDone:
			r.flush(true)
			return
		}
	}
}

// flush moves the pending buffer onto the chunk channel. Periodic flushes
// are suppressed while paused; the terminal flush always drains.
func (r *readerRecorder) flush(final bool) {
	r.mu.Lock()
	if !final && r.paused {
		r.mu.Unlock()
		return
	}
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(pending) > 0 {
		r.chunks <- pending
	}
}

func (r *readerRecorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
	return nil
}

func (r *readerRecorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
	return nil
}

// Stop flushes the buffered fragment and closes the chunk channel. Safe to
// call more than once and after the recorder terminated on its own.
func (r *readerRecorder) Stop() error {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		_ = r.src.Close()
	})
	<-r.emitDone
	return nil
}

func (r *readerRecorder) Chunks() <-chan []byte { return r.chunks }

func (r *readerRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readErr
}
