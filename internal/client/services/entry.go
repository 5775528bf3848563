package services

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/DAC098/tj2/internal/client/capture"
	"github.com/DAC098/tj2/internal/client/client"
	"github.com/DAC098/tj2/internal/client/models"
	"github.com/DAC098/tj2/internal/client/repositories/attachments"
	"github.com/DAC098/tj2/internal/client/repositories/entries"
	"github.com/DAC098/tj2/internal/client/upload"
	"github.com/DAC098/tj2/internal/filex"
	"github.com/DAC098/tj2/internal/logging"
)

// StagingDir is where capture payloads are written when staged to disk.
const StagingDir = "staging"

// SaveOutcome is the result of one save pass: the saved entry, the files
// whose uploads were confirmed, and the attachments requeued for retry.
type SaveOutcome struct {
	Entry  client.EntryRecord
	Files  []models.ServerFile
	Failed []models.PendingAttachment
}

// EntryService manages journal entry drafts and the save flow: save the
// entry, correlate the server's file placeholders to pending attachments by
// key, drain the uploads with a bounded pool, and requeue failures.
type EntryService interface {
	CreateDraft(ctx context.Context, entry *models.Entry) error
	List(ctx context.Context) ([]models.Entry, error)
	Get(ctx context.Context, id string) (*models.Entry, error)
	Delete(ctx context.Context, id string) error

	// AttachRecording queues a finished capture payload on the entry,
	// staged to disk when stage is set, otherwise held in memory.
	AttachRecording(ctx context.Context, entryID string, rec capture.Recording, stage bool) (models.PendingAttachment, error)

	// AttachFile queues an existing file from disk.
	AttachFile(ctx context.Context, entryID, path string) (models.PendingAttachment, error)

	// Pending lists the entry's queued attachments.
	Pending(ctx context.Context, entryID string) ([]models.PendingAttachment, error)

	// Save runs one save pass for the entry.
	Save(ctx context.Context, entryID string) (*SaveOutcome, error)
}

type entryService struct {
	client     client.Client
	entryRepo  entries.Repository
	attachRepo attachments.Repository
	workers    int
	log        logging.Logger
}

// NewEntryService constructs an EntryService. workers bounds upload
// concurrency per save; <= 0 selects the default.
func NewEntryService(client client.Client, entryRepo entries.Repository, attachRepo attachments.Repository, workers int, log logging.Logger) EntryService {
	if log == nil {
		log = logging.NewNop()
	}
	if workers <= 0 {
		workers = upload.DefaultWorkers
	}
	return &entryService{
		client:     client,
		entryRepo:  entryRepo,
		attachRepo: attachRepo,
		workers:    workers,
		log:        log.With("component", "entries"),
	}
}

func (s *entryService) CreateDraft(ctx context.Context, entry *models.Entry) error {
	entry.UpdatedAt = time.Now().UTC()
	if err := s.entryRepo.CreateOrUpdate(ctx, entry); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	return nil
}

func (s *entryService) List(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.entryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving entries: %w", err)
	}
	return rows, nil
}

func (s *entryService) Get(ctx context.Context, id string) (*models.Entry, error) {
	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving entry: %w", err)
	}
	return entry, nil
}

func (s *entryService) Delete(ctx context.Context, id string) error {
	if err := s.attachRepo.DeleteByEntry(ctx, id); err != nil {
		return fmt.Errorf("error deleting attachments: %w", err)
	}
	if err := s.entryRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}
	return nil
}

func (s *entryService) AttachRecording(ctx context.Context, entryID string, rec capture.Recording, stage bool) (models.PendingAttachment, error) {
	name := recordingName(rec)

	var att models.PendingAttachment
	if stage {
		path, err := filex.WriteStaged(StagingDir, name, rec.Data)
		if err != nil {
			return models.PendingAttachment{}, fmt.Errorf("failed to stage recording: %w", err)
		}
		att = models.NewLocalAttachment(path, name, rec.MIME)
	} else {
		att = models.NewInMemoryAttachment(name, rec.MIME, rec.Data)
	}

	att.EntryId = entryID
	if err := s.attachRepo.Save(ctx, &att); err != nil {
		return models.PendingAttachment{}, fmt.Errorf("failed to queue attachment: %w", err)
	}
	return att, nil
}

func (s *entryService) AttachFile(ctx context.Context, entryID, path string) (models.PendingAttachment, error) {
	if _, err := os.Stat(path); err != nil {
		return models.PendingAttachment{}, fmt.Errorf("attachment file: %w", err)
	}

	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	att := models.NewLocalAttachment(path, name, mimeType)
	att.EntryId = entryID
	if err := s.attachRepo.Save(ctx, &att); err != nil {
		return models.PendingAttachment{}, fmt.Errorf("failed to queue attachment: %w", err)
	}
	return att, nil
}

func (s *entryService) Pending(ctx context.Context, entryID string) ([]models.PendingAttachment, error) {
	return s.attachRepo.GetByEntry(ctx, entryID)
}

// Save submits the entry with an attachment manifest, then uploads each
// placeholder's payload through the bounded pool.
//
// A failed save request leaves the pending queue untouched; the whole pass
// surfaces one error. Per-attachment upload failures do not fail the pass:
// they come back requeued in the outcome's Failed list.
func (s *entryService) Save(ctx context.Context, entryID string) (*SaveOutcome, error) {
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving entry: %w", err)
	}

	pending, err := s.attachRepo.GetByEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving attachments: %w", err)
	}

	manifest := make([]client.AttachedFile, 0, len(pending))
	for _, att := range pending {
		manifest = append(manifest, client.AttachedFile{Key: att.Key, Name: att.Name, MIME: att.MIME})
	}

	result, err := s.client.SaveEntry(ctx, entry, manifest)
	if err != nil {
		return nil, fmt.Errorf("save error: %w", err)
	}

	byKey := make(map[string]models.PendingAttachment, len(pending))
	for _, att := range pending {
		byKey[att.Key] = att
	}

	tasks := make([]upload.Task, 0, len(result.Files))
	outcome := &SaveOutcome{Entry: result.Entry}

	for _, file := range result.Files {
		att, ok := byKey[file.AttachedKey]
		if !ok {
			s.log.Warn(ctx, "placeholder without matching attachment", "file_id", file.Id, "key", file.AttachedKey)
			continue
		}

		payload, err := att.Payload()
		if err != nil {
			s.log.Warn(ctx, "attachment payload unavailable", "key", att.Key, "error", err)
			outcome.Failed = append(outcome.Failed, att.Failed())
			continue
		}

		tasks = append(tasks, upload.Task{
			FileID:  file.Id,
			EntryID: entryID,
			Key:     att.Key,
			Name:    att.Name,
			MIME:    att.MIME,
			Payload: payload,
		})
	}

	res := upload.Drain(ctx, tasks, s.workers, func(ctx context.Context, task upload.Task) (models.ServerFile, error) {
		return s.client.UploadFile(ctx, task.EntryID, task.FileID, task.MIME, task.Payload)
	})

	outcome.Files = res.Succeeded
	for _, file := range res.Succeeded {
		key := keyForFile(tasks, file.Id)
		if key == "" {
			continue
		}
		if err := s.attachRepo.DeleteByKey(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to dequeue uploaded attachment", "key", key, "error", err)
		}
		if att := byKey[key]; att.Path != "" {
			if err := filex.RemoveStaged(StagingDir, att.Path); err != nil {
				s.log.Warn(ctx, "failed to remove staged payload", "path", att.Path, "error", err)
			}
		}
	}

	for _, task := range res.Failed {
		att, ok := byKey[task.Key]
		if !ok {
			continue
		}
		failed := att.Failed()
		if err := s.attachRepo.Save(ctx, &failed); err != nil {
			s.log.Error(ctx, "failed to requeue attachment", "key", task.Key, "error", err)
		}
		outcome.Failed = append(outcome.Failed, failed)
	}

	s.log.Info(ctx, "save pass finished",
		"entry_id", entryID, "uploaded", len(res.Succeeded), "failed", len(outcome.Failed))
	return outcome, nil
}

func keyForFile(tasks []upload.Task, fileID string) string {
	for _, task := range tasks {
		if task.FileID == fileID {
			return task.Key
		}
	}
	return ""
}

func recordingName(rec capture.Recording) string {
	ext := ".webm"
	if exts, err := mime.ExtensionsByType(rec.MIME); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	return fmt.Sprintf("%s-%s%s", rec.Kind, time.Now().UTC().Format("20060102-150405"), ext)
}
