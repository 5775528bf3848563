package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/DAC098/tj2/internal/client/migrations"
	"github.com/DAC098/tj2/internal/client/repositories/attachments"
	"github.com/DAC098/tj2/internal/client/repositories/entries"
	"github.com/DAC098/tj2/internal/client/repositories/metadata"
)

// Repositories bundles the local store handles the CLI services need.
type Repositories struct {
	DB          *sql.DB
	Metadata    metadata.Repository
	Entries     entries.Repository
	Attachments attachments.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// RunMigrations applies the embedded schema. Safe to run repeatedly.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the local SQLite database at dsn,
// migrates it, and returns the repository set.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocalDataNotAvailable, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrLocalDataNotAvailable, err)
	}

	return &Repositories{
		DB:          db,
		Metadata:    metadata.NewSQLiteRepository(db),
		Entries:     entries.NewSQLiteRepository(db),
		Attachments: attachments.NewSQLiteRepository(db),
	}, nil
}
