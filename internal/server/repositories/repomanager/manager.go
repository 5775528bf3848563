package repomanager

import (
	"context"
	"database/sql"

	"github.com/DAC098/tj2/internal/dbx"
	"github.com/DAC098/tj2/internal/server/repositories/entries"
	"github.com/DAC098/tj2/internal/server/repositories/files"
	"github.com/DAC098/tj2/internal/server/repositories/refreshtokens"
	"github.com/DAC098/tj2/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Entries(db dbx.DBTX) entries.Repository
	Files(db dbx.DBTX) files.Repository
}
