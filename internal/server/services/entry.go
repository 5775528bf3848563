package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DAC098/tj2/internal/common"
	"github.com/DAC098/tj2/internal/dbx"
	"github.com/DAC098/tj2/internal/server/config"
	"github.com/DAC098/tj2/internal/server/models"
	"github.com/DAC098/tj2/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// AttachmentRequest names one attachment the client intends to upload after
// the entry save. Key is the client's correlation key.
type AttachmentRequest struct {
	Key  string
	Name string
	MIME string
}

// EntryService persists journal entries and mints placeholder file records
// for the attachments a save request announces.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
}

// NewEntryService constructs an EntryService.
func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *EntryService {
	return &EntryService{db: db, repomanager: m, config: cfg}
}

// Save upserts the entry and returns one placeholder file record per
// announced attachment, each echoing the client's key. A key already known
// from an earlier save of the same entry reuses its existing record, so a
// retried save does not mint duplicates. Everything happens in one
// transaction.
func (s *EntryService) Save(ctx context.Context, userID string, entry *models.Entry, attached []AttachmentRequest) (*models.Entry, []*models.File, error) {
	if entry.ID == "" {
		return nil, nil, fmt.Errorf("%w: entry id is required", common.ErrorValidation)
	}
	for _, a := range attached {
		if a.Key == "" {
			return nil, nil, fmt.Errorf("%w: attachment key is required", common.ErrorValidation)
		}
	}

	entry.UserID = userID

	var placeholders []*models.File
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		entryRepo := s.repomanager.Entries(tx)
		fileRepo := s.repomanager.Files(tx)

		if err := entryRepo.CreateOrUpdate(ctx, entry); err != nil {
			return err
		}

		for _, a := range attached {
			existing, err := fileRepo.GetByAttachedKey(ctx, userID, entry.ID, a.Key)
			if err == nil {
				placeholders = append(placeholders, existing)
				continue
			}
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}

			file := &models.File{
				ID:          uuid.NewString(),
				EntryID:     entry.ID,
				UserID:      userID,
				Name:        a.Name,
				MIME:        a.MIME,
				Status:      models.FileStatusRequested,
				AttachedKey: a.Key,
			}
			if err := fileRepo.Create(ctx, file); err != nil {
				return err
			}
			placeholders = append(placeholders, file)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, nil, common.ErrorConflict
		}
		return nil, nil, fmt.Errorf("failed to save entry: %w", err)
	}

	return entry, placeholders, nil
}

// Get returns the user's entry by id.
func (s *EntryService) Get(ctx context.Context, userID, id string) (*models.Entry, error) {
	return s.repomanager.Entries(s.db).GetByID(ctx, userID, id)
}
