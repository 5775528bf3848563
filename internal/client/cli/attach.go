package cli

import (
	"context"
)

// Attach queues an existing file on disk for upload with the current draft.
func (a *App) Attach(ctx context.Context, args []string) error {
	if a.draft == nil {
		printlnFn("No draft open. Use 'new' or 'open <id>' first.")
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: attach <path>")
		return nil
	}

	att, err := a.entryService.AttachFile(ctx, a.draft.Id, args[0])
	if err != nil {
		printlnFn("failed to attach file:", err.Error())
		return err
	}

	printlnFn("Queued", att.Name, "-", att.MIME)
	return nil
}
