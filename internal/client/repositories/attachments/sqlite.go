package attachments

import (
	"context"
	"fmt"

	"github.com/DAC098/tj2/internal/client/models"
	"github.com/DAC098/tj2/internal/common"
	"github.com/DAC098/tj2/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save upserts an attachment by key so a retry requeue replaces the record
// in place without minting a new correlation key.
func (r *SQLiteRepository) Save(ctx context.Context, a *models.PendingAttachment) error {
	query := `INSERT INTO attachments (key, entry_id, kind, name, mime, path, data)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET kind = excluded.kind,
				name = excluded.name,
				mime = excluded.mime,
				path = excluded.path,
				data = excluded.data
	`
	_, err := r.db.ExecContext(ctx, query,
		a.Key, a.EntryId, string(a.Kind), a.Name, a.MIME, a.Path, a.Data)
	if err != nil {
		return fmt.Errorf("failed to upsert attachment: %w", err)
	}
	return nil
}

// GetByEntry lists an entry's pending attachments.
func (r *SQLiteRepository) GetByEntry(ctx context.Context, entryID string) ([]models.PendingAttachment, error) {
	query := `SELECT key, entry_id, kind, name, mime, path, data
			FROM attachments WHERE entry_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []models.PendingAttachment
	for rows.Next() {
		var (
			a    models.PendingAttachment
			kind string
		)
		if err := rows.Scan(&a.Key, &a.EntryId, &kind, &a.Name, &a.MIME, &a.Path, &a.Data); err != nil {
			return nil, err
		}
		a.Kind = models.AttachmentKind(kind)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByKey removes one attachment. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByKey(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteByEntry removes all attachments of an entry. Deleting for an entry
// with no attachments is not an error.
func (r *SQLiteRepository) DeleteByEntry(ctx context.Context, entryID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE entry_id = ?`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete attachments: %w", err)
	}
	return nil
}
