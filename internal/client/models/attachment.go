package models

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// AttachmentKind classifies where a pending attachment's payload lives.
type AttachmentKind string

const (
	// AttachmentLocal points at a file staged on disk (user-picked file or
	// a capture payload written to the staging directory).
	AttachmentLocal AttachmentKind = "local"
	// AttachmentInMemory holds its payload in Data (a capture that was
	// never staged).
	AttachmentInMemory AttachmentKind = "in_memory"
	// AttachmentFailed is a previously attempted upload whose payload is
	// retained for an unmodified retry on the next save.
	AttachmentFailed AttachmentKind = "failed"
)

// PendingAttachment is a not-yet-uploaded entry attachment. Key is the
// client-generated correlation key: the server echoes it on the placeholder
// file record it creates during entry save, which is how the client matches
// placeholders back to payloads.
type PendingAttachment struct {
	Key  string
	Kind AttachmentKind
	Name string
	MIME string

	// EntryId ties the attachment to its draft entry; set when the
	// attachment is persisted alongside the draft.
	EntryId string

	// Path holds the staged payload location for Local (and Failed
	// attachments that were local).
	Path string
	// Data holds the payload for InMemory (and Failed attachments that
	// were in memory).
	Data []byte
}

// NewLocalAttachment references a payload staged at path.
func NewLocalAttachment(path, name, mime string) PendingAttachment {
	return PendingAttachment{
		Key:  uuid.NewString(),
		Kind: AttachmentLocal,
		Name: name,
		MIME: mime,
		Path: path,
	}
}

// NewInMemoryAttachment carries its payload directly.
func NewInMemoryAttachment(name, mime string, data []byte) PendingAttachment {
	return PendingAttachment{
		Key:  uuid.NewString(),
		Kind: AttachmentInMemory,
		Name: name,
		MIME: mime,
		Data: data,
	}
}

// Failed returns a copy marked for retry. The payload fields are carried
// over unchanged.
func (a PendingAttachment) Failed() PendingAttachment {
	a.Kind = AttachmentFailed
	return a
}

// Payload loads the attachment bytes regardless of kind.
func (a PendingAttachment) Payload() ([]byte, error) {
	if a.Path != "" {
		data, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("read attachment payload: %w", err)
		}
		return data, nil
	}
	return a.Data, nil
}
