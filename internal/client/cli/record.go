package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/DAC098/tj2/internal/client/capture"
)

// Record runs an interactive capture session against the configured device
// and queues the finished payload on the current draft.
//
// Kind is taken from args ("audio", "video", "both"), defaulting to audio.
// While the session is live a small control loop accepts pause, resume,
// again (further segment after a stop), and stop.
func (a *App) Record(ctx context.Context, args []string) error {
	if a.draft == nil {
		printlnFn("No draft open. Use 'new' or 'open <id>' first.")
		return nil
	}

	kind := capture.KindAudio
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "audio":
			kind = capture.KindAudio
		case "video":
			kind = capture.KindVideo
		case "both":
			kind = capture.KindBoth
		default:
			printlnFn("Usage: record [audio|video|both]")
			return nil
		}
	}

	session, err := capture.Start(ctx, a.device, kind, capture.Options{
		Interval: a.config.SliceInterval,
		Logger:   a.log,
	})
	if err != nil {
		printlnFn(capture.StatusMessage(err))
		return err
	}
	a.session = session
	printlnFn("Recording", string(kind), "- commands: pause, resume, level, again, stop")

	for {
		line, err := getSimpleText(a.reader, "", os.Stdout)
		if err != nil {
			// Input is gone; end the session but keep what was captured.
			_, _ = session.Stop()
			return a.queueRecording(ctx, session)
		}

		switch strings.ToLower(line) {
		case "pause":
			if err := session.Pause(); err != nil {
				printlnFn(err.Error())
			} else {
				printlnFn("Paused")
			}

		case "resume":
			if err := session.Resume(); err != nil {
				printlnFn(err.Error())
			} else {
				printlnFn("Recording")
			}

		case "level":
			printlnFn(fmt.Sprintf("input level: %.2f", session.Level()))

		case "again":
			if _, err := session.Stop(); err != nil {
				printlnFn("Recording stopped with error:", err.Error())
			}
			if err := session.Record(ctx); err != nil {
				printlnFn("Could not restart:", capture.StatusMessage(err))
				return a.queueRecording(ctx, session)
			}
			printlnFn("Recording a further segment")

		case "stop":
			if _, err := session.Stop(); err != nil {
				printlnFn("Recording stopped with error:", err.Error())
			}
			return a.queueRecording(ctx, session)

		default:
			if session.State() == capture.StateStopped || session.State() == capture.StateError {
				// The device died mid-recording; close out.
				return a.queueRecording(ctx, session)
			}
			printlnFn("Commands: pause, resume, level, again, stop")
		}
	}
}

// queueRecording attaches the session's assembled payload to the draft.
// Nothing is queued for an empty capture.
func (a *App) queueRecording(ctx context.Context, session *capture.Session) error {
	a.session = nil

	rec := session.Recording()
	if len(rec.Data) == 0 {
		printlnFn("Nothing captured")
		return nil
	}

	att, err := a.entryService.AttachRecording(ctx, a.draft.Id, rec, a.config.StageRecordings)
	if err != nil {
		printlnFn("failed to queue recording:", err.Error())
		return err
	}

	printlnFn("Queued", att.Name, "-", string(att.Kind))
	return nil
}
