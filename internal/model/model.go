// Package model 定义数据库模型
package model

import (
	"time"

	"gorm.io/gorm"
)

// User 账户表
type User struct {
	ID           string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Email        string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"column:password;type:varchar(255);not null" json:"-"`
	LastSignInAt *time.Time `gorm:"column:last_sign_in_at" json:"last_sign_in_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// UserProfile 用户资料表，持有管理员标记
type UserProfile struct {
	UserID    string    `gorm:"column:user_id;primaryKey;type:varchar(36)" json:"user_id"`
	IsAdmin   bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// Note 笔记表
type Note struct {
	ID          string         `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID      string         `gorm:"column:user_id;type:varchar(36);index:idx_note_user_updated,priority:1;not null" json:"user_id"`
	Title       string         `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Content     map[string]any `gorm:"column:content;type:text;serializer:json" json:"content"`
	ContentText string         `gorm:"column:content_text;type:text" json:"content_text"`
	FolderID    *string        `gorm:"column:folder_id;type:varchar(36);index" json:"folder_id"`
	Tags        []string       `gorm:"column:tags;type:text;serializer:json" json:"tags"`
	IsFavorite  bool           `gorm:"column:is_favorite;not null;default:false" json:"is_favorite"`
	IsArchived  bool           `gorm:"column:is_archived;not null;default:false" json:"is_archived"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;index:idx_note_user_updated,priority:2" json:"updated_at"`
}

func (Note) TableName() string { return "notes" }

// Folder 文件夹表
type Folder struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID      string    `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	Name        string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Color       string    `gorm:"column:color;type:varchar(16)" json:"color"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Folder) TableName() string { return "folders" }

// AuthSession 登录会话表，删除即吊销
type AuthSession struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuthSession) TableName() string { return "auth_sessions" }

// AutoMigrate 迁移全部表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &UserProfile{}, &Note{}, &Folder{}, &AuthSession{})
}
