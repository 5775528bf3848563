package cli

import (
	"context"
)

// Delete removes a local entry together with its upload queue.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: delete <id>")
		return nil
	}

	if err := a.entryService.Delete(ctx, args[0]); err != nil {
		printlnFn("failed to delete entry:", err.Error())
		return err
	}

	if a.draft != nil && a.draft.Id == args[0] {
		a.draft = nil
	}
	printlnFn("Deleted", args[0])
	return nil
}
