package attachments

import (
	"context"

	"github.com/DAC098/tj2/internal/client/models"
)

// Repository persists pending attachments so their payload references
// survive process restarts and failed uploads stay queued for retry.
type Repository interface {
	// Save inserts a pending attachment or replaces it by key (a retry
	// requeue overwrites the previous kind).
	Save(ctx context.Context, a *models.PendingAttachment) error

	// GetByEntry returns the pending attachments for one entry in
	// insertion order.
	GetByEntry(ctx context.Context, entryID string) ([]models.PendingAttachment, error)

	// DeleteByKey removes a single attachment after a confirmed upload.
	DeleteByKey(ctx context.Context, key string) error

	// DeleteByEntry removes all attachments of an entry.
	DeleteByEntry(ctx context.Context, entryID string) error
}
