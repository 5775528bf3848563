package metadata

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/DAC098/tj2/internal/client/migrations"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

func TestGetSetDelete(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	got, err := repo.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Nil(t, got, "missing key reads as nil")

	require.NoError(t, repo.Set(ctx, KeyAccessToken, []byte("tok-1")))
	require.NoError(t, repo.Set(ctx, KeyAccessToken, []byte("tok-2")))

	got, err = repo.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-2"), got, "set overwrites")

	require.NoError(t, repo.Delete(ctx, KeyAccessToken))
	got, err = repo.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClear(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyAccessToken, []byte("a")))
	require.NoError(t, repo.Set(ctx, KeyRefreshToken, []byte("r")))
	require.NoError(t, repo.Clear(ctx))

	for _, key := range []string{KeyAccessToken, KeyRefreshToken} {
		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}
