package capture

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeterObserveTracksPeak(t *testing.T) {
	m := newMeter(time.Hour, nil)
	defer m.Stop()

	assert.Zero(t, m.Level())

	m.Observe([]byte{0, 64, 32})
	assert.InDelta(t, 0.5, m.Level(), 0.01)

	// Negative samples count by magnitude. 0x80 is -128 as a signed sample.
	m.Observe([]byte{0x80})
	assert.InDelta(t, 1.0, m.Level(), 0.01)

	m.Observe([]byte{0})
	assert.Zero(t, m.Level(), "level reflects the latest fragment, not a running max")
}

func TestMeterReportsPeriodically(t *testing.T) {
	var calls atomic.Int32
	m := newMeter(5*time.Millisecond, func(level float64) {
		calls.Add(1)
	})

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)

	m.Stop()
	m.Stop() // duplicate stop must not panic or hang
}
