package dto

import "github.com/haierkeys/fast-note-client/internal/domain"

// AdminUpdateNoteRequest admin_update_note arguments
// admin_update_note 参数
type AdminUpdateNoteRequest struct {
	NoteID  string           `json:"note_id" binding:"required"`
	Updates domain.NotePatch `json:"updates"`
}

// AdminDeleteNoteRequest admin_delete_note arguments
// admin_delete_note 参数
type AdminDeleteNoteRequest struct {
	NoteID string `json:"note_id" binding:"required"`
}

// UserProfilePatch writable columns of a user_profiles row
// user_profiles 可写字段
type UserProfilePatch struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}
