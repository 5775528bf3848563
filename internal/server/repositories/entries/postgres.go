// Package entries provides a PostgreSQL-backed repository for journal
// entries.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DAC098/tj2/internal/common"
	"github.com/DAC098/tj2/internal/dbx"
	"github.com/DAC098/tj2/internal/server/models"
)

// PostgresRepository implements entry storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrUpdate upserts an entry by id. The ownership guard in the ON
// CONFLICT clause keeps one user from overwriting another's entry with the
// same client-assigned id; such an attempt affects no rows and yields
// common.ErrorConflict.
func (r *PostgresRepository) CreateOrUpdate(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (id, user_id, title, contents, entry_date, tags, custom_fields, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			contents = EXCLUDED.contents,
			entry_date = EXCLUDED.entry_date,
			tags = EXCLUDED.tags,
			custom_fields = EXCLUDED.custom_fields,
			updated_at = now()
			WHERE entries.user_id = EXCLUDED.user_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Title, entry.Contents, entry.Date, entry.Tags, entry.CustomFields)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorConflict
	}
	return nil
}

// GetByID returns the user's entry with the given id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Entry, error) {
	query := `
		SELECT id, user_id, title, contents, entry_date, tags, custom_fields, updated_at
		FROM entries
		WHERE id = $1 AND user_id = $2
	`
	entry := &models.Entry{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Contents,
		&entry.Date, &entry.Tags, &entry.CustomFields, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}
