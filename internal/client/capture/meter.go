package capture

import (
	"sync"
	"time"
)

// Meter periodically reports the peak amplitude of the most recent fragment.
// It is the CLI stand-in for the oscilloscope preview: a cancellable task
// started when a segment begins and stopped on every exit path, including
// errors.
type Meter struct {
	interval time.Duration
	onLevel  func(float64)

	mu   sync.Mutex
	peak float64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newMeter(interval time.Duration, onLevel func(float64)) *Meter {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	m := &Meter{
		interval: interval,
		onLevel:  onLevel,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Meter) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if m.onLevel != nil {
				m.onLevel(m.Level())
			}
		case <-m.stop:
			return
		}
	}
}

// Observe records the peak amplitude of a fragment, interpreting bytes as
// signed 8-bit samples. Precision does not matter here; the value only
// drives a level indicator.
func (m *Meter) Observe(chunk []byte) {
	var peak float64
	for _, b := range chunk {
		v := float64(int8(b)) / 128
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}

	m.mu.Lock()
	m.peak = peak
	m.mu.Unlock()
}

// Level returns the most recently observed peak in [0, 1].
func (m *Meter) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// Stop cancels the periodic task and waits for it to exit. Safe to call
// more than once.
func (m *Meter) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}
