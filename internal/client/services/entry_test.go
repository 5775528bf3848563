package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DAC098/tj2/internal/client/capture"
	"github.com/DAC098/tj2/internal/client/client"
	"github.com/DAC098/tj2/internal/client/models"
)

// fakeClient scripts the server side of the save flow.
type fakeClient struct {
	mu          sync.Mutex
	saveErr     error
	failUploads map[string]bool // placeholder file id -> fail the upload
	uploaded    []string
}

func (f *fakeClient) Close() error                                         { return nil }
func (f *fakeClient) Register(ctx context.Context, u, p string) error      { return nil }
func (f *fakeClient) Login(ctx context.Context, u, p string) error         { return nil }
func (f *fakeClient) Ping(ctx context.Context) error                       { return nil }
func (f *fakeClient) FileURL(ctx context.Context, e, id string) (string, error) {
	return "https://files.example/" + id, nil
}

func (f *fakeClient) SaveEntry(ctx context.Context, entry *models.Entry, attached []client.AttachedFile) (*client.SaveEntryResult, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}

	result := &client.SaveEntryResult{
		Entry: client.EntryRecord{Id: entry.Id, Title: entry.Title, Date: entry.Date},
	}
	for _, att := range attached {
		result.Files = append(result.Files, models.ServerFile{
			Id:          "f-" + att.Key,
			EntryId:     entry.Id,
			Name:        att.Name,
			MIME:        att.MIME,
			Status:      models.FileStatusRequested,
			AttachedKey: att.Key,
		})
	}
	return result, nil
}

func (f *fakeClient) UploadFile(ctx context.Context, entryID, fileID, mime string, payload []byte) (models.ServerFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUploads[fileID] {
		return models.ServerFile{}, errors.New("upload rejected")
	}
	f.uploaded = append(f.uploaded, fileID)
	return models.ServerFile{
		Id:      fileID,
		EntryId: entryID,
		MIME:    mime,
		Size:    int64(len(payload)),
		Status:  models.FileStatusReceived,
	}, nil
}

func newService(t *testing.T, fc *fakeClient) (EntryService, *client.Repositories) {
	t.Helper()

	repos, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	svc := NewEntryService(fc, repos.Entries, repos.Attachments, 2, nil)
	return svc, repos
}

func draftWithAttachments(t *testing.T, svc EntryService, n int) *models.Entry {
	t.Helper()
	ctx := context.Background()

	entry := models.NewEntry(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	entry.Title = "field notes"
	require.NoError(t, svc.CreateDraft(ctx, entry))

	for i := 0; i < n; i++ {
		rec := capture.Recording{
			Data: []byte(fmt.Sprintf("payload-%d", i)),
			MIME: "audio/webm",
			Kind: capture.KindAudio,
		}
		_, err := svc.AttachRecording(ctx, entry.Id, rec, false)
		require.NoError(t, err)
	}
	return entry
}

func TestSaveUploadsAllAttachments(t *testing.T) {
	fc := &fakeClient{}
	svc, repos := newService(t, fc)
	ctx := context.Background()

	entry := draftWithAttachments(t, svc, 2)

	outcome, err := svc.Save(ctx, entry.Id)
	require.NoError(t, err)

	assert.Equal(t, entry.Id, outcome.Entry.Id)
	assert.Len(t, outcome.Files, 2)
	assert.Empty(t, outcome.Failed)
	for _, file := range outcome.Files {
		assert.Equal(t, models.FileStatusReceived, file.Status)
	}

	left, err := repos.Attachments.GetByEntry(ctx, entry.Id)
	require.NoError(t, err)
	assert.Empty(t, left, "confirmed uploads leave the queue")
}

func TestSaveRequeuesFailedUploads(t *testing.T) {
	fc := &fakeClient{}
	svc, repos := newService(t, fc)
	ctx := context.Background()

	entry := draftWithAttachments(t, svc, 3)

	pending, err := svc.Pending(ctx, entry.Id)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	badKey := pending[1].Key
	fc.failUploads = map[string]bool{"f-" + badKey: true}

	outcome, err := svc.Save(ctx, entry.Id)
	require.NoError(t, err, "per-attachment failures do not fail the pass")

	assert.Len(t, outcome.Files, 2)
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, badKey, outcome.Failed[0].Key)
	assert.Equal(t, models.AttachmentFailed, outcome.Failed[0].Kind)

	left, err := repos.Attachments.GetByEntry(ctx, entry.Id)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, badKey, left[0].Key, "same correlation key on retry")
	assert.Equal(t, []byte("payload-1"), left[0].Data, "payload retained unmodified")

	// Next save retries the requeued attachment and succeeds.
	fc.failUploads = nil
	outcome, err = svc.Save(ctx, entry.Id)
	require.NoError(t, err)
	assert.Len(t, outcome.Files, 1)
	assert.Empty(t, outcome.Failed)

	left, err = repos.Attachments.GetByEntry(ctx, entry.Id)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSaveRequestFailureLeavesQueueUntouched(t *testing.T) {
	fc := &fakeClient{saveErr: client.ErrUnavailable}
	svc, _ := newService(t, fc)
	ctx := context.Background()

	entry := draftWithAttachments(t, svc, 2)

	_, err := svc.Save(ctx, entry.Id)
	require.ErrorIs(t, err, client.ErrUnavailable)

	pending, err := svc.Pending(ctx, entry.Id)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, att := range pending {
		assert.Equal(t, models.AttachmentInMemory, att.Kind, "no attachment was touched")
	}
}

func TestAttachRecordingStagedAndInMemory(t *testing.T) {
	fc := &fakeClient{}
	svc, _ := newService(t, fc)
	ctx := context.Background()

	t.Chdir(t.TempDir())

	entry := models.NewEntry(time.Now())
	require.NoError(t, svc.CreateDraft(ctx, entry))

	rec := capture.Recording{Data: []byte("captured"), MIME: "audio/webm", Kind: capture.KindAudio}

	staged, err := svc.AttachRecording(ctx, entry.Id, rec, true)
	require.NoError(t, err)
	assert.Equal(t, models.AttachmentLocal, staged.Kind)
	data, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("captured"), data)

	mem, err := svc.AttachRecording(ctx, entry.Id, rec, false)
	require.NoError(t, err)
	assert.Equal(t, models.AttachmentInMemory, mem.Kind)
	assert.Equal(t, []byte("captured"), mem.Data)

	pending, err := svc.Pending(ctx, entry.Id)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestAttachFile(t *testing.T) {
	fc := &fakeClient{}
	svc, _ := newService(t, fc)
	ctx := context.Background()

	entry := models.NewEntry(time.Now())
	require.NoError(t, svc.CreateDraft(ctx, entry))

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o600))

	att, err := svc.AttachFile(ctx, entry.Id, path)
	require.NoError(t, err)
	assert.Equal(t, models.AttachmentLocal, att.Kind)
	assert.Equal(t, "notes.txt", att.Name)

	_, err = svc.AttachFile(ctx, entry.Id, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDeleteRemovesEntryAndQueue(t *testing.T) {
	fc := &fakeClient{}
	svc, repos := newService(t, fc)
	ctx := context.Background()

	entry := draftWithAttachments(t, svc, 2)
	require.NoError(t, svc.Delete(ctx, entry.Id))

	_, err := svc.Get(ctx, entry.Id)
	assert.Error(t, err)

	left, err := repos.Attachments.GetByEntry(ctx, entry.Id)
	require.NoError(t, err)
	assert.Empty(t, left)
}
