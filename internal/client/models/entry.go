// Package models defines client-side data models used by the journal CLI.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is a journal entry draft persisted locally and saved to the server.
type Entry struct {
	// Id is a globally unique identifier for the entry, generated on the
	// client so drafts and server records share one key.
	Id string

	// Title is the optional entry heading.
	Title string

	// Contents is the free-form entry body.
	Contents string

	// Date is the journal date the entry belongs to (not the edit time).
	Date time.Time

	// Tags are free-form labels, optionally with a value.
	Tags []Tag

	// CustomFields are structured name/value pairs attached to the entry.
	CustomFields []CustomField

	// UpdatedAt is the last local modification time in UTC.
	UpdatedAt time.Time
}

// NewEntry returns a draft entry dated for day with a fresh id.
func NewEntry(day time.Time) *Entry {
	return &Entry{
		Id:        uuid.NewString(),
		Date:      day,
		UpdatedAt: time.Now().UTC(),
	}
}

// Tag is a label on an entry. Value may be empty.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// TagsFromStrings parses command-line tag arguments of the form "name" or
// "name=value".
func TagsFromStrings(args []string) []Tag {
	tags := make([]Tag, 0, len(args))
	for _, arg := range args {
		name, value, _ := strings.Cut(arg, "=")
		tags = append(tags, Tag{Name: name, Value: value})
	}
	return tags
}

// CustomField is a structured name/value pair on an entry.
type CustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
