package entries

import (
	"context"

	"github.com/DAC098/tj2/internal/client/models"
)

// Repository describes persistence for journal entry drafts.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// CreateOrUpdate inserts an entry or updates an existing one by Id.
	CreateOrUpdate(ctx context.Context, entry *models.Entry) error

	// GetAll returns all entries ordered by journal date, newest first.
	GetAll(ctx context.Context) ([]models.Entry, error)

	// GetByID returns an entry by its identifier, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Entry, error)

	// DeleteByID removes an entry.
	DeleteByID(ctx context.Context, id string) error
}
