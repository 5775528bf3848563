// Package files provides a PostgreSQL-backed repository for attachment file
// records.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DAC098/tj2/internal/common"
	"github.com/DAC098/tj2/internal/dbx"
	"github.com/DAC098/tj2/internal/server/models"
)

// PostgresRepository implements file record storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a placeholder file record.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, entry_id, user_id, name, mime, size, status, attached_key, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.EntryID, file.UserID, file.Name, file.MIME,
		file.Size, file.Status, file.AttachedKey, file.StorageKey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the user's file record scoped to an entry, or
// common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, entryID, id string) (*models.File, error) {
	query := `
		SELECT id, entry_id, user_id, name, mime, size, status, attached_key, storage_key
		FROM files
		WHERE id = $1 AND entry_id = $2 AND user_id = $3
	`
	file := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id, entryID, userID).Scan(
		&file.ID, &file.EntryID, &file.UserID, &file.Name, &file.MIME,
		&file.Size, &file.Status, &file.AttachedKey, &file.StorageKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

// GetByAttachedKey returns the file record carrying the given client
// correlation key, so a retried save reuses its placeholder instead of
// minting a second one. Returns common.ErrorNotFound when absent.
func (r *PostgresRepository) GetByAttachedKey(ctx context.Context, userID, entryID, key string) (*models.File, error) {
	query := `
		SELECT id, entry_id, user_id, name, mime, size, status, attached_key, storage_key
		FROM files
		WHERE attached_key = $1 AND entry_id = $2 AND user_id = $3
	`
	file := &models.File{}
	err := r.db.QueryRowContext(ctx, query, key, entryID, userID).Scan(
		&file.ID, &file.EntryID, &file.UserID, &file.Name, &file.MIME,
		&file.Size, &file.Status, &file.AttachedKey, &file.StorageKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

// MarkReceived records a stored payload: size, detected mime, storage key,
// and the status flip to received.
func (r *PostgresRepository) MarkReceived(ctx context.Context, id string, size int64, mime, storageKey string) error {
	query := `
		UPDATE files
		SET size = $2, mime = $3, storage_key = $4, status = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, size, mime, storageKey, models.FileStatusReceived)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
