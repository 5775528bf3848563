package client

import (
	"context"
	"time"

	"github.com/DAC098/tj2/internal/client/models"
)

// Client is the journal server API surface used by the CLI services.
type Client interface {
	Close() error
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Ping(ctx context.Context) error

	// SaveEntry submits the entry with a manifest of attachments to be
	// uploaded. The server answers with a placeholder file record per
	// manifest item, each echoing the client's correlation key.
	SaveEntry(ctx context.Context, entry *models.Entry, attached []AttachedFile) (*SaveEntryResult, error)

	// UploadFile sends one attachment payload to its placeholder and
	// returns the confirmed file record.
	UploadFile(ctx context.Context, entryID, fileID, mime string, payload []byte) (models.ServerFile, error)

	// FileURL resolves the download location (a presigned object URL) of
	// an uploaded file.
	FileURL(ctx context.Context, entryID, fileID string) (string, error)
}

// AttachedFile is one manifest item in a save request.
type AttachedFile struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	MIME string `json:"mime"`
}

// SaveEntryResult is the server's answer to an entry save.
type SaveEntryResult struct {
	Entry EntryRecord         `json:"entry"`
	Files []models.ServerFile `json:"files"`
}

// EntryRecord is the server-side entry representation.
type EntryRecord struct {
	Id           string               `json:"id"`
	Title        string               `json:"title"`
	Contents     string               `json:"contents"`
	Date         time.Time            `json:"date"`
	Tags         []models.Tag         `json:"tags,omitempty"`
	CustomFields []models.CustomField `json:"custom_fields,omitempty"`
}
