package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestLevels(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		level string
		log   func(l *SlogLogger)
	}{
		{"DEBUG", func(l *SlogLogger) { l.Debug(ctx, "msg", "k", "v") }},
		{"INFO", func(l *SlogLogger) { l.Info(ctx, "msg", "k", "v") }},
		{"WARN", func(l *SlogLogger) { l.Warn(ctx, "msg", "k", "v") }},
		{"ERROR", func(l *SlogLogger) { l.Error(ctx, "msg", "k", "v") }},
	} {
		l, buf := newBufferedLogger(t)
		tc.log(l)
		rec := lastRecord(t, buf)
		assert.Equal(t, tc.level, rec["level"])
		assert.Equal(t, "msg", rec["msg"])
		assert.Equal(t, "v", rec["k"])
	}
}

func TestWith(t *testing.T) {
	l, buf := newBufferedLogger(t)
	child := l.With("component", "capture")
	child.Info(context.Background(), "started")

	rec := lastRecord(t, buf)
	assert.Equal(t, "capture", rec["component"])
}
