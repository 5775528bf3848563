package cli

import (
	"context"
	"fmt"
)

// List prints the locally stored entries, newest day first, with the number
// of attachments still waiting for upload.
func (a *App) List(ctx context.Context) error {
	entries, err := a.entryService.List(ctx)
	if err != nil {
		printlnFn("failed to list entries:", err.Error())
		return err
	}

	if len(entries) == 0 {
		printlnFn("No entries yet. Use 'new' to create one.")
		return nil
	}

	for _, entry := range entries {
		pending, err := a.entryService.Pending(ctx, entry.Id)
		if err != nil {
			return err
		}

		line := fmt.Sprintf("%s  %s  %s", entry.Date.Format("2006-01-02"), entry.Id, entry.Title)
		if len(pending) > 0 {
			line += fmt.Sprintf("  (%d pending)", len(pending))
		}
		printlnFn(line)
	}
	return nil
}

// Pending prints the upload queue for the current draft.
func (a *App) Pending(ctx context.Context) error {
	if a.draft == nil {
		printlnFn("No draft open. Use 'new' or 'open <id>' first.")
		return nil
	}

	pending, err := a.entryService.Pending(ctx, a.draft.Id)
	if err != nil {
		printlnFn("failed to read queue:", err.Error())
		return err
	}

	if len(pending) == 0 {
		printlnFn("Queue is empty")
		return nil
	}
	for _, att := range pending {
		printlnFn(fmt.Sprintf("%s  %-9s  %s  %s", att.Key, string(att.Kind), att.MIME, att.Name))
	}
	return nil
}
