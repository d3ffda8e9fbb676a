// Package store holds the client-side state: the session, the personal
// notes and folders, and the administrative override view. Each store owns
// its cache, reconciles it with backend responses and reports failures as
// structured results instead of returning errors.
// Package store 客户端状态层：会话、个人笔记与文件夹、管理员视图
package store

import (
	"sync"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/pkg/code"
)

var (
	// ErrNotAuthenticated is returned before any request when no identity is set.
	ErrNotAuthenticated error = code.ErrorNotAuthenticated

	// ErrAdminRequired is returned before any request when the cached
	// privilege flag is not Granted.
	ErrAdminRequired error = code.ErrorAdminRequired
)

// Result is the uniform outcome of every store action.
// Result 所有 store 操作的统一返回结果
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func succeeded() Result {
	return Result{Success: true}
}

func failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// IdentityResult carries the identity created by Register.
// IdentityResult 注册返回的身份信息
type IdentityResult struct {
	Result
	User *domain.Identity `json:"user,omitempty"`
}

// NoteResult carries a single note. Skipped is set when the action was a
// silent no-op because the note is not in the local cache.
// NoteResult 单条笔记结果；本地缓存未命中时 Skipped 为 true
type NoteResult struct {
	Result
	Note    *domain.Note `json:"note,omitempty"`
	Skipped bool         `json:"skipped,omitempty"`
}

// NotesResult carries a fetched note listing. Stale is set when a newer
// fetch was issued while this one was in flight and the response was not
// applied to the cache.
// NotesResult 笔记列表结果；被更新的请求取代时 Stale 为 true，且不写入缓存
type NotesResult struct {
	Result
	Notes []*domain.Note `json:"notes,omitempty"`
	Stale bool           `json:"stale,omitempty"`
}

type FolderResult struct {
	Result
	Folder *domain.Folder `json:"folder,omitempty"`
}

type FoldersResult struct {
	Result
	Folders []*domain.Folder `json:"folders,omitempty"`
	Stale   bool             `json:"stale,omitempty"`
}

type AdminNoteResult struct {
	Result
	Note *domain.AdminNote `json:"note,omitempty"`
}

type AdminNotesResult struct {
	Result
	Notes []*domain.AdminNote `json:"notes,omitempty"`
}

type AdminUsersResult struct {
	Result
	Users []*domain.AdminUser `json:"users,omitempty"`
}

// status is the loading/error pair shared by the stores. Loading is true
// while at least one action is in flight, so overlapping actions do not
// clear each other's flag.
type status struct {
	mu       sync.RWMutex
	inflight int
	err      string
}

// Loading reports whether any action is in flight.
// Loading 是否有操作进行中
func (s *status) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the last action's error message, or "".
// Err 最近一次操作的错误信息
func (s *status) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ClearError resets the error message.
// ClearError 清空错误信息
func (s *status) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// beginLocked must be called with mu held.
func (s *status) beginLocked() {
	s.inflight++
	s.err = ""
}

// endLocked must be called with mu held.
func (s *status) endLocked(err error) {
	if s.inflight > 0 {
		s.inflight--
	}
	if err != nil {
		s.err = err.Error()
	}
}

func (s *status) begin() {
	s.mu.Lock()
	s.beginLocked()
	s.mu.Unlock()
}
