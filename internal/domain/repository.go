package domain

import (
	"context"
	"time"
)

// NoteRepository 笔记仓储接口
// Methods taking uid are owner-scoped (the row access policy); the Admin*
// methods are unscoped and must only be reached after a privilege check.
type NoteRepository interface {
	// List 获取用户笔记，按更新时间倒序
	List(ctx context.Context, uid string, includeArchived bool) ([]*Note, error)

	// GetByID 根据ID获取笔记
	GetByID(ctx context.Context, id, uid string) (*Note, error)

	// Create 创建笔记
	Create(ctx context.Context, note *Note) (*Note, error)

	// Update 部分更新笔记并返回更新后的完整行
	Update(ctx context.Context, id, uid string, patch NotePatch) (*Note, error)

	// Delete 删除笔记
	Delete(ctx context.Context, id, uid string) error

	// AdminList 获取所有用户的笔记，按更新时间倒序
	AdminList(ctx context.Context) ([]*Note, error)

	// AdminUpdate 跨用户部分更新笔记
	AdminUpdate(ctx context.Context, id string, patch NotePatch) (*Note, error)

	// AdminDelete 跨用户删除笔记
	AdminDelete(ctx context.Context, id string) error

	// CountByUser 按用户统计笔记数量
	CountByUser(ctx context.Context) (map[string]int64, error)
}

// FolderRepository 文件夹仓储接口
type FolderRepository interface {
	// List 获取用户文件夹，按名称排序
	List(ctx context.Context, uid string) ([]*Folder, error)

	// GetByID 根据ID获取文件夹
	GetByID(ctx context.Context, id, uid string) (*Folder, error)

	// Create 创建文件夹
	Create(ctx context.Context, folder *Folder) (*Folder, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByID 根据ID获取用户
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)

	// List 获取所有用户
	List(ctx context.Context) ([]*User, error)

	// UpdateIsAdmin 更新 user_profiles.is_admin
	UpdateIsAdmin(ctx context.Context, id string, isAdmin bool) error

	// UpdateLastSignIn 更新最后登录时间
	UpdateLastSignIn(ctx context.Context, id string, at time.Time) error
}

// SessionRepository 会话仓储接口
type SessionRepository interface {
	Create(ctx context.Context, session *AuthSession) error
	GetByID(ctx context.Context, id string) (*AuthSession, error)
	Delete(ctx context.Context, id string) error

	// DeleteExpired 删除在 before 之前过期的会话，返回删除数量
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
