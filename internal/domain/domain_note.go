// Package domain 定义领域模型和接口
package domain

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// DefaultNoteTitle is applied by CreateNote when no title is given.
const DefaultNoteTitle = "Untitled Note"

// Document is an opaque structured-content tree (editor JSON).
type Document map[string]any

// EmptyDocument returns the canonical empty editor document.
func EmptyDocument() Document {
	return Document{"type": "doc", "content": []any{}}
}

// TextDocument wraps plain text into a document with one paragraph per
// line. Empty text gives EmptyDocument.
func TextDocument(text string) Document {
	if text == "" {
		return EmptyDocument()
	}
	var paragraphs []any
	for _, line := range strings.Split(text, "\n") {
		p := map[string]any{"type": "paragraph"}
		if line != "" {
			p["content"] = []any{map[string]any{"type": "text", "text": line}}
		}
		paragraphs = append(paragraphs, p)
	}
	return Document{"type": "doc", "content": paragraphs}
}

// Note 笔记领域模型
type Note struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Content     Document  `json:"content"`
	ContentText string    `json:"content_text"`
	FolderID    *string   `json:"folder_id"`
	Tags        []string  `json:"tags"`
	IsFavorite  bool      `json:"is_favorite"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a deep-enough copy for cache isolation: slices, the folder
// pointer and the top level of the document are copied.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	c.Tags = slices.Clone(n.Tags)
	c.Content = maps.Clone(n.Content)
	if n.FolderID != nil {
		f := *n.FolderID
		c.FolderID = &f
	}
	return &c
}

// NoteInput is the optional data accepted by CreateNote.
type NoteInput struct {
	Title       string
	Content     Document
	ContentText string
	FolderID    *string
	Tags        []string
	IsFavorite  bool
	IsArchived  bool
}

// NoteInsert is the fully-defaulted row sent to the backend on create.
type NoteInsert struct {
	UserID      string   `json:"user_id" binding:"required"`
	Title       string   `json:"title"`
	Content     Document `json:"content"`
	ContentText string   `json:"content_text"`
	FolderID    *string  `json:"folder_id"`
	Tags        []string `json:"tags"`
	IsFavorite  bool     `json:"is_favorite"`
	IsArchived  bool     `json:"is_archived"`
}

// NoteQuery selects personal notes. The default listing excludes archived
// notes and orders by UpdatedAt descending.
type NoteQuery struct {
	IncludeArchived bool
}
