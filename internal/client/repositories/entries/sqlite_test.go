package entries

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/DAC098/tj2/internal/client/migrations"
	"github.com/DAC098/tj2/internal/client/models"
	"github.com/DAC098/tj2/internal/common"
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

func sampleEntry(day time.Time) *models.Entry {
	e := models.NewEntry(day.Truncate(time.Second))
	e.Title = "morning pages"
	e.Contents = "slept well"
	e.Tags = []models.Tag{{Name: "mood", Value: "good"}, {Name: "travel"}}
	e.CustomFields = []models.CustomField{{Name: "hours_slept", Value: "8"}}
	e.UpdatedAt = e.UpdatedAt.Truncate(time.Second)
	return e
}

func TestCreateOrUpdateRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	e := sampleEntry(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateOrUpdate(ctx, e))

	got, err := repo.GetByID(ctx, e.Id)
	require.NoError(t, err)
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, e.Contents, got.Contents)
	assert.True(t, got.Date.Equal(e.Date))
	assert.Equal(t, e.Tags, got.Tags)
	assert.Equal(t, e.CustomFields, got.CustomFields)

	// Second write with the same id updates in place.
	e.Title = "revised"
	e.Tags = nil
	require.NoError(t, repo.CreateOrUpdate(ctx, e))

	got, err = repo.GetByID(ctx, e.Id)
	require.NoError(t, err)
	assert.Equal(t, "revised", got.Title)
	assert.Empty(t, got.Tags)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetAllOrdersByDateDesc(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	older := sampleEntry(time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC))
	newer := sampleEntry(time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateOrUpdate(ctx, older))
	require.NoError(t, repo.CreateOrUpdate(ctx, newer))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.Id, all[0].Id)
	assert.Equal(t, older.Id, all[1].Id)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteByID(t *testing.T) {
	repo := NewSQLiteRepository(newTestDB(t))
	ctx := context.Background()

	e := sampleEntry(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateOrUpdate(ctx, e))

	require.NoError(t, repo.DeleteByID(ctx, e.Id))
	assert.ErrorIs(t, repo.DeleteByID(ctx, e.Id), common.ErrorNotFound)

	_, err := repo.GetByID(ctx, e.Id)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
