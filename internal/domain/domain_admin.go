package domain

import (
	"maps"
	"slices"
	"time"
)

// AdminNote is the denormalized cross-account note projection returned by
// get_all_notes_admin. Its fields are NOT interchangeable with Note; use
// the admin field mapping to translate a NotePatch.
type AdminNote struct {
	NoteID          string    `json:"note_id"`
	NoteTitle       string    `json:"note_title"`
	NoteContent     Document  `json:"note_content"`
	NoteContentText string    `json:"note_content_text"`
	NoteFolderID    *string   `json:"note_folder_id"`
	NoteTags        []string  `json:"note_tags"`
	NoteIsFavorite  bool      `json:"note_is_favorite"`
	NoteIsArchived  bool      `json:"note_is_archived"`
	NoteCreatedAt   time.Time `json:"note_created_at"`
	NoteUpdatedAt   time.Time `json:"note_updated_at"`
	UserID          string    `json:"user_id"`
	UserEmail       string    `json:"user_email"`
}

func (n *AdminNote) Clone() *AdminNote {
	if n == nil {
		return nil
	}
	c := *n
	c.NoteTags = slices.Clone(n.NoteTags)
	c.NoteContent = maps.Clone(n.NoteContent)
	if n.NoteFolderID != nil {
		f := *n.NoteFolderID
		c.NoteFolderID = &f
	}
	return &c
}

// AdminUser is the projection returned by get_all_users_admin.
type AdminUser struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	IsAdmin      bool       `json:"is_admin"`
	NoteCount    int64      `json:"note_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at"`
}

func (u *AdminUser) Clone() *AdminUser {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastSignInAt != nil {
		t := *u.LastSignInAt
		c.LastSignInAt = &t
	}
	return &c
}
