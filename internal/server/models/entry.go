// Package models defines server-side data models persisted in the database.
package models

import "time"

// Entry is a journal entry owned by a user. Ids are client-assigned so
// offline drafts keep their identity across saves.
type Entry struct {
	ID           string
	UserID       string
	Title        string
	Contents     string
	Date         time.Time
	Tags         []byte // JSON array of {name, value}
	CustomFields []byte // JSON array of {name, value}
	UpdatedAt    time.Time
}
