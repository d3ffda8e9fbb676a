package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// NotePatch is a personal-shaped partial note. A nil field is absent; a
// non-nil field is set. FolderID pointing at "" means "detach from folder"
// and is encoded as JSON null.
//
// The same type carries partial server responses, so merging a response
// into a cached Note never clobbers fields the server did not return.
type NotePatch struct {
	Title       *string    `json:"title,omitempty"`
	Content     Document   `json:"content,omitempty"`
	ContentText *string    `json:"content_text,omitempty"`
	FolderID    *string    `json:"-"`
	Tags        []string   `json:"tags,omitempty"`
	IsFavorite  *bool      `json:"is_favorite,omitempty"`
	IsArchived  *bool      `json:"is_archived,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type notePatchAlias NotePatch

func (p NotePatch) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	raw, err := sonic.Marshal(notePatchAlias(p))
	if err != nil {
		return nil, err
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	// omitempty 会丢掉空切片/空 map，出现即发送
	if p.Content != nil {
		out["content"] = map[string]any(p.Content)
	}
	if p.Tags != nil {
		out["tags"] = p.Tags
	}
	if p.FolderID != nil {
		if *p.FolderID == "" {
			out["folder_id"] = nil
		} else {
			out["folder_id"] = *p.FolderID
		}
	}
	return sonic.Marshal(out)
}

func (p *NotePatch) UnmarshalJSON(data []byte) error {
	var alias notePatchAlias
	if err := sonic.Unmarshal(data, &alias); err != nil {
		return err
	}
	var keys map[string]any
	if err := sonic.Unmarshal(data, &keys); err != nil {
		return err
	}
	if v, ok := keys["folder_id"]; ok {
		switch f := v.(type) {
		case nil:
			alias.FolderID = Ptr("")
		case string:
			alias.FolderID = &f
		default:
			return errors.Errorf("folder_id must be a string or null, got %T", v)
		}
	}
	*p = NotePatch(alias)
	return nil
}

// IsEmpty reports whether no field is set.
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.ContentText == nil &&
		p.FolderID == nil && p.Tags == nil && p.IsFavorite == nil &&
		p.IsArchived == nil && p.UpdatedAt == nil
}

// ApplyTo shallow-merges the present fields into n.
func (p NotePatch) ApplyTo(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = maps.Clone(p.Content)
	}
	if p.ContentText != nil {
		n.ContentText = *p.ContentText
	}
	if p.FolderID != nil {
		if *p.FolderID == "" {
			n.FolderID = nil
		} else {
			f := *p.FolderID
			n.FolderID = &f
		}
	}
	if p.Tags != nil {
		n.Tags = slices.Clone(p.Tags)
	}
	if p.IsFavorite != nil {
		n.IsFavorite = *p.IsFavorite
	}
	if p.IsArchived != nil {
		n.IsArchived = *p.IsArchived
	}
	if p.UpdatedAt != nil {
		n.UpdatedAt = *p.UpdatedAt
	}
}

// PatchFromNote returns a patch carrying every field of n, the shape a
// backend returns after a full-row update.
func PatchFromNote(n *Note) *NotePatch {
	folder := ""
	if n.FolderID != nil {
		folder = *n.FolderID
	}
	updated := n.UpdatedAt
	return &NotePatch{
		Title:       Ptr(n.Title),
		Content:     maps.Clone(n.Content),
		ContentText: Ptr(n.ContentText),
		FolderID:    &folder,
		Tags:        slices.Clone(n.Tags),
		IsFavorite:  Ptr(n.IsFavorite),
		IsArchived:  Ptr(n.IsArchived),
		UpdatedAt:   &updated,
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
