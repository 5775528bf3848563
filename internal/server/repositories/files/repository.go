package files

import (
	"context"

	"github.com/DAC098/tj2/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, userID, entryID, id string) (*models.File, error)
	GetByAttachedKey(ctx context.Context, userID, entryID, key string) (*models.File, error)
	MarkReceived(ctx context.Context, id string, size int64, mime, storageKey string) error
}
