package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/DAC098/tj2/internal/client/client"
)

// Save pushes the current draft to the server and drains its upload queue.
// Failed uploads stay queued and are retried on the next save.
func (a *App) Save(ctx context.Context) error {
	if a.draft == nil {
		printlnFn("No draft open. Use 'new' or 'open <id>' first.")
		return nil
	}
	if !a.isLoggedIn() {
		printlnFn("Log in first")
		return nil
	}

	outcome, err := a.entryService.Save(ctx, a.draft.Id)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
			printlnFn("Server unreachable; the entry and its queue are kept locally.")
			return nil
		}
		printlnFn("save failed:", err.Error())
		return err
	}

	printlnFn("Saved entry", outcome.Entry.Id)
	for _, file := range outcome.Files {
		printlnFn(fmt.Sprintf("  uploaded %s (%d bytes)", file.Name, file.Size))
	}
	for _, att := range outcome.Failed {
		printlnFn("  failed", att.Name, "- kept in queue")
	}
	return nil
}
