package entries

import (
	"context"

	"github.com/DAC098/tj2/internal/server/models"
)

type Repository interface {
	CreateOrUpdate(ctx context.Context, entry *models.Entry) error
	GetByID(ctx context.Context, userID, id string) (*models.Entry, error)
}
