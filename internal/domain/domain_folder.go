package domain

import "time"

// DefaultFolderColor is applied by CreateFolder when no color is given.
const DefaultFolderColor = "#6366f1"

// Folder 文件夹领域模型
type Folder struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a copy of f.
func (f *Folder) Clone() *Folder {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// FolderInsert is the row sent to the backend on create.
type FolderInsert struct {
	UserID      string `json:"user_id" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}
