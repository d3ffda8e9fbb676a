package domain

import (
	"maps"
	"slices"
)

// AdminFieldMapping maps one personal-shaped NotePatch field onto its
// denormalized AdminNote projection field.
type AdminFieldMapping struct {
	Personal   string
	Projection string
	apply      func(p NotePatch, n *AdminNote) bool
}

// AdminNoteFieldMap is the complete personal→projection mapping. Every
// applier is bound to concrete struct fields, so renaming either shape
// breaks compilation instead of silently dropping an update.
var AdminNoteFieldMap = []AdminFieldMapping{
	{"title", "note_title", func(p NotePatch, n *AdminNote) bool {
		if p.Title == nil {
			return false
		}
		n.NoteTitle = *p.Title
		return true
	}},
	{"content", "note_content", func(p NotePatch, n *AdminNote) bool {
		if p.Content == nil {
			return false
		}
		n.NoteContent = maps.Clone(p.Content)
		return true
	}},
	{"content_text", "note_content_text", func(p NotePatch, n *AdminNote) bool {
		if p.ContentText == nil {
			return false
		}
		n.NoteContentText = *p.ContentText
		return true
	}},
	{"is_favorite", "note_is_favorite", func(p NotePatch, n *AdminNote) bool {
		if p.IsFavorite == nil {
			return false
		}
		n.NoteIsFavorite = *p.IsFavorite
		return true
	}},
	{"is_archived", "note_is_archived", func(p NotePatch, n *AdminNote) bool {
		if p.IsArchived == nil {
			return false
		}
		n.NoteIsArchived = *p.IsArchived
		return true
	}},
	{"folder_id", "note_folder_id", func(p NotePatch, n *AdminNote) bool {
		if p.FolderID == nil {
			return false
		}
		if *p.FolderID == "" {
			n.NoteFolderID = nil
		} else {
			f := *p.FolderID
			n.NoteFolderID = &f
		}
		return true
	}},
	{"tags", "note_tags", func(p NotePatch, n *AdminNote) bool {
		if p.Tags == nil {
			return false
		}
		n.NoteTags = slices.Clone(p.Tags)
		return true
	}},
}

// ApplyToAdminNote applies every present field of p to n through
// AdminNoteFieldMap and returns the projection field names it changed.
// Fields absent from p are left untouched. The timestamp is not handled
// here.
func ApplyToAdminNote(p NotePatch, n *AdminNote) []string {
	var changed []string
	for _, m := range AdminNoteFieldMap {
		if m.apply(p, n) {
			changed = append(changed, m.Projection)
		}
	}
	return changed
}
