package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DAC098/tj2/internal/common"
	"github.com/DAC098/tj2/internal/server/models"
)

func sampleEntry() *models.Entry {
	return &models.Entry{
		ID:       "e1",
		Title:    "morning",
		Contents: "walked the dog",
		Date:     time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Tags:     []byte(`[]`),
	}
}

func TestSave_CreatesPlaceholdersEchoingKeys(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	entriesRepo := &fakeEntriesRepo{}
	filesRepo := newFakeFilesRepo()
	rm := &fakeRepoMgr{entries: entriesRepo, files: filesRepo}
	svc := NewEntryService(db, rm, testConfig())

	attached := []AttachmentRequest{
		{Key: "key-1", Name: "a.webm", MIME: "audio/webm"},
		{Key: "key-2", Name: "b.jpg", MIME: "image/jpeg"},
	}

	entry, placeholders, err := svc.Save(context.Background(), "u-1", sampleEntry(), attached)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.UserID != "u-1" {
		t.Fatalf("user not stamped on entry: %+v", entry)
	}
	if len(entriesRepo.upserted) != 1 {
		t.Fatalf("entry not upserted")
	}
	if len(placeholders) != 2 {
		t.Fatalf("want 2 placeholders, got %d", len(placeholders))
	}
	for i, ph := range placeholders {
		if ph.AttachedKey != attached[i].Key {
			t.Fatalf("placeholder %d does not echo key: %+v", i, ph)
		}
		if ph.Status != models.FileStatusRequested {
			t.Fatalf("placeholder %d not requested: %+v", i, ph)
		}
		if ph.ID == "" {
			t.Fatalf("placeholder %d has no id", i)
		}
	}
}

func TestSave_RetryReusesExistingPlaceholder(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	filesRepo := newFakeFilesRepo()
	rm := &fakeRepoMgr{entries: &fakeEntriesRepo{}, files: filesRepo}
	svc := NewEntryService(db, rm, testConfig())

	attached := []AttachmentRequest{{Key: "key-1", Name: "a.webm", MIME: "audio/webm"}}

	_, first, err := svc.Save(context.Background(), "u-1", sampleEntry(), attached)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, second, err := svc.Save(context.Background(), "u-1", sampleEntry(), attached)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(filesRepo.created) != 1 {
		t.Fatalf("retry minted a duplicate placeholder: %d rows", len(filesRepo.created))
	}
	if first[0].ID != second[0].ID {
		t.Fatalf("placeholder id changed across retries: %s vs %s", first[0].ID, second[0].ID)
	}
}

func TestSave_ValidationErrors(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	svc := NewEntryService(db, &fakeRepoMgr{}, testConfig())

	_, _, err := svc.Save(context.Background(), "u-1", &models.Entry{}, nil)
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation for missing entry id, got %v", err)
	}

	_, _, err = svc.Save(context.Background(), "u-1", sampleEntry(), []AttachmentRequest{{Name: "a"}})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation for missing key, got %v", err)
	}
}

func TestSave_OwnershipConflictRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoMgr{
		entries: &fakeEntriesRepo{upsertErr: common.ErrorConflict},
		files:   newFakeFilesRepo(),
	}
	svc := NewEntryService(db, rm, testConfig())

	_, _, err := svc.Save(context.Background(), "u-2", sampleEntry(), nil)
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want ErrorConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
