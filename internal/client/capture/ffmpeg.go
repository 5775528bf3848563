package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// FFmpegDevice captures microphone/camera media by running ffmpeg and
// reading the muxed webm stream from its stdout.
type FFmpegDevice struct {
	Command     string // ffmpeg binary, "ffmpeg" if empty
	AudioFormat string // input format for audio, e.g. "pulse"
	AudioInput  string // audio device name, e.g. "default"
	VideoFormat string // input format for video, e.g. "v4l2"
	VideoInput  string // video device path, e.g. "/dev/video0"
}

func NewFFmpegDevice() *FFmpegDevice {
	return &FFmpegDevice{
		Command:     "ffmpeg",
		AudioFormat: "pulse",
		AudioInput:  "default",
		VideoFormat: "v4l2",
		VideoInput:  "/dev/video0",
	}
}

func (d *FFmpegDevice) args(c Constraints) []string {
	args := []string{"-nostdin", "-hide_banner", "-loglevel", "warning"}

	if c.Audio {
		args = append(args, "-f", d.AudioFormat, "-i", d.AudioInput)
	}
	if c.Video {
		args = append(args, "-f", d.VideoFormat, "-i", d.VideoInput)
	}

	if c.Video {
		args = append(args, "-c:v", "libvpx", "-deadline", "realtime")
	}
	if c.Audio {
		args = append(args, "-c:a", "libopus")
	}

	return append(args, "-f", "webm", "-")
}

// RequestStream starts ffmpeg for the given constraints. The recorder reads
// the process stdout; the returned stream handle terminates the process.
// Startup failures are classified into the device error taxonomy.
func (d *FFmpegDevice) RequestStream(ctx context.Context, c Constraints) (Stream, Recorder, error) {
	command := d.Command
	if command == "" {
		command = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, command, d.args(c)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// The recorder reads from a pipe we own instead of cmd.StdoutPipe:
	// cmd.Wait closes the exec-managed pipe on exit, which can drop the
	// buffered tail of the stream while the recorder is still reading.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, nil, fmt.Errorf("create ffmpeg stdout pipe: %w", err)
	}
	cmd.Stdout = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, nil, classifyDeviceError(err, stderr.String())
	}
	// The child holds its own copy of the write end; keeping ours open
	// would prevent the read end from ever reaching EOF.
	pw.Close()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// ffmpeg reports unusable devices by exiting immediately; give it a
	// moment before treating the stream as acquired.
	select {
	case err := <-waitErr:
		pr.Close()
		if err == nil {
			err = errors.New("ffmpeg exited before capture started")
		}
		return nil, nil, classifyDeviceError(err, stderr.String())
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		pr.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrAborted, ctx.Err())
	case <-time.After(250 * time.Millisecond):
	}

	stream := &ffmpegStream{process: cmd.Process, waitErr: waitErr}
	rec := newReaderRecorder(pr, func() error { return stream.exitCause(&stderr) })
	return stream, rec, nil
}

// classifyDeviceError maps ffmpeg startup failures onto the acquisition
// taxonomy so the UI can show a specific message.
func classifyDeviceError(err error, stderr string) error {
	detail := strings.TrimSpace(stderr)
	lower := strings.ToLower(detail)

	var classified error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		classified = ErrAborted
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "not allowed"):
		classified = ErrPermissionDenied
	case errors.Is(err, exec.ErrNotFound),
		strings.Contains(lower, "no such file or directory"),
		strings.Contains(lower, "no such device"),
		strings.Contains(lower, "device not found"),
		strings.Contains(lower, "cannot open"):
		classified = ErrDeviceNotFound
	default:
		if detail != "" {
			return fmt.Errorf("device acquisition failed: %w: %s", err, detail)
		}
		return fmt.Errorf("device acquisition failed: %w", err)
	}

	if detail != "" {
		return fmt.Errorf("%w: %s", classified, detail)
	}
	return fmt.Errorf("%w: %v", classified, err)
}

// ffmpegStream owns the capture process. StopAllTracks asks ffmpeg to
// finalize the stream and escalates to kill if it does not exit promptly.
type ffmpegStream struct {
	process  *os.Process
	waitErr  <-chan error
	stopReq  atomic.Bool
	stopOnce sync.Once
}

func (s *ffmpegStream) StopAllTracks() {
	s.stopOnce.Do(func() {
		s.stopReq.Store(true)
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case <-s.waitErr:
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			<-s.waitErr
		}
	})
}

// exitCause reports why the capture process went away, consulted by the
// recorder when its stream drains. A stop we requested ourselves is not an
// error, whatever exit status ffmpeg chooses for the interrupt.
func (s *ffmpegStream) exitCause(stderr *bytes.Buffer) error {
	err := <-s.waitErr
	if s.stopReq.Load() || err == nil {
		return nil
	}

	if detail := strings.TrimSpace(stderr.String()); detail != "" {
		return fmt.Errorf("capture process died: %w: %s", err, detail)
	}
	return fmt.Errorf("capture process died: %w", err)
}
