package models

import "time"

// File upload states. A row starts as "requested" when an entry save names
// the attachment and flips to "received" once the payload is stored.
const (
	FileStatusRequested = "requested"
	FileStatusReceived  = "received"
)

// File describes server-side metadata for a binary payload associated with
// an entry. The content itself lives in object storage under StorageKey.
type File struct {
	ID      string
	EntryID string
	UserID  string
	Name    string
	MIME    string
	Size    int64
	Status  string

	// AttachedKey echoes the client's correlation key from the save
	// request so the client can match this record to its local queue.
	AttachedKey string

	// StorageKey is the object-storage key of the stored payload; empty
	// until the upload arrives.
	StorageKey string

	CreatedAt time.Time
}
