package store

import (
	"context"
	"slices"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PrivilegeState is the cached result of the server-side privilege check.
// PrivilegeState 管理员权限检查结果
type PrivilegeState int

const (
	PrivilegeUnknown PrivilegeState = iota
	PrivilegeChecking
	PrivilegeGranted
	PrivilegeDenied
)

func (p PrivilegeState) String() string {
	switch p {
	case PrivilegeChecking:
		return "checking"
	case PrivilegeGranted:
		return "granted"
	case PrivilegeDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// AdminStore serves the cross-account view. Every privileged action checks
// the cached privilege first and fails with ErrAdminRequired, without
// contacting the backend, unless the state is PrivilegeGranted. The backend
// re-authorizes every call on its own.
// AdminStore 管理员视图；权限未确认时拒绝所有特权操作
type AdminStore struct {
	status

	backend domain.AdminRPC
	logger  *zap.Logger
	now     func() time.Time

	privilege PrivilegeState
	allNotes  []*domain.AdminNote
	allUsers  []*domain.AdminUser

	// epoch is bumped by ClearAdminData; responses issued under an older
	// epoch are dropped.
	epoch uint64
}

// NewAdminStore creates an AdminStore. A nil logger disables logging.
// NewAdminStore 创建管理员 store
func NewAdminStore(backend domain.AdminRPC, l *zap.Logger) *AdminStore {
	if l == nil {
		l = zap.NewNop()
	}
	return &AdminStore{
		backend: backend,
		logger:  l.With(zap.String(logger.FieldStore, "admin")),
		now:     time.Now,
	}
}

// CheckAdminStatus asks the backend whether the current user is an
// administrator and caches the answer. Any failure resolves to Denied.
// CheckAdminStatus 检查管理员权限，失败一律视为无权限
func (s *AdminStore) CheckAdminStatus(ctx context.Context) bool {
	s.mu.Lock()
	s.beginLocked()
	s.privilege = PrivilegeChecking
	epoch := s.epoch
	s.mu.Unlock()

	granted, err := s.backend.IsCurrentUserAdmin(ctx)
	if err != nil {
		s.logger.Error("Error checking admin status", zap.Error(err))
		granted = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if epoch != s.epoch {
		return false
	}
	if granted {
		s.privilege = PrivilegeGranted
	} else {
		s.privilege = PrivilegeDenied
	}
	return granted
}

// guard reports whether privileged actions may proceed.
func (s *AdminStore) guard() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.privilege == PrivilegeGranted
}

// FetchAllNotes replaces the cross-account note cache.
// FetchAllNotes 拉取所有用户的笔记
func (s *AdminStore) FetchAllNotes(ctx context.Context) AdminNotesResult {
	if !s.guard() {
		return AdminNotesResult{Result: failed(ErrAdminRequired)}
	}
	epoch := s.beginEpoch()

	rows, err := s.backend.GetAllNotesAdmin(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error fetching all notes", zap.String(logger.FieldRPC, domain.RPCGetAllNotesAdmin), zap.Error(err))
		return AdminNotesResult{Result: failed(err)}
	}
	if epoch == s.epoch {
		s.allNotes = cloneAdminNotes(rows)
	}
	return AdminNotesResult{Result: succeeded(), Notes: cloneAdminNotes(rows)}
}

// FetchAllUsers replaces the user projection cache.
// FetchAllUsers 拉取所有用户
func (s *AdminStore) FetchAllUsers(ctx context.Context) AdminUsersResult {
	if !s.guard() {
		return AdminUsersResult{Result: failed(ErrAdminRequired)}
	}
	epoch := s.beginEpoch()

	rows, err := s.backend.GetAllUsersAdmin(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error fetching all users", zap.String(logger.FieldRPC, domain.RPCGetAllUsersAdmin), zap.Error(err))
		return AdminUsersResult{Result: failed(err)}
	}
	if epoch == s.epoch {
		s.allUsers = cloneAdminUsers(rows)
	}
	return AdminUsersResult{Result: succeeded(), Users: cloneAdminUsers(rows)}
}

// AdminUpdateNote updates any user's note. On success the cached projection
// receives every field present in patch, translated through
// domain.AdminNoteFieldMap, and its updated timestamp is set to the local
// clock.
// AdminUpdateNote 修改任意用户的笔记，按字段映射表更新缓存
func (s *AdminStore) AdminUpdateNote(ctx context.Context, id string, patch domain.NotePatch) AdminNoteResult {
	if !s.guard() {
		return AdminNoteResult{Result: failed(ErrAdminRequired)}
	}
	s.begin()

	err := s.backend.AdminUpdateNote(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error updating note as admin", zap.String(logger.FieldNoteID, id), zap.Error(err))
		return AdminNoteResult{Result: failed(err)}
	}

	i := slices.IndexFunc(s.allNotes, func(n *domain.AdminNote) bool { return n.NoteID == id })
	if i < 0 {
		return AdminNoteResult{Result: succeeded()}
	}
	updated := s.allNotes[i].Clone()
	changed := domain.ApplyToAdminNote(patch, updated)
	updated.NoteUpdatedAt = s.now()
	s.allNotes[i] = updated
	s.logger.Debug("admin note updated", zap.String(logger.FieldNoteID, id), zap.Strings("fields", changed))
	return AdminNoteResult{Result: succeeded(), Note: updated.Clone()}
}

// AdminDeleteNote deletes any user's note and drops it from the cache after
// the backend confirms.
// AdminDeleteNote 删除任意用户的笔记
func (s *AdminStore) AdminDeleteNote(ctx context.Context, id string) Result {
	if !s.guard() {
		return failed(ErrAdminRequired)
	}
	s.begin()

	err := s.backend.AdminDeleteNote(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error deleting note as admin", zap.String(logger.FieldNoteID, id), zap.Error(err))
		return failed(err)
	}
	s.allNotes = slices.DeleteFunc(s.allNotes, func(n *domain.AdminNote) bool { return n.NoteID == id })
	return succeeded()
}

// MakeUserAdmin grants administrator rights to a user.
// MakeUserAdmin 授予管理员权限
func (s *AdminStore) MakeUserAdmin(ctx context.Context, userID string) Result {
	return s.setUserAdmin(ctx, userID, true)
}

// RemoveAdminPrivileges revokes administrator rights from a user.
// RemoveAdminPrivileges 撤销管理员权限
func (s *AdminStore) RemoveAdminPrivileges(ctx context.Context, userID string) Result {
	return s.setUserAdmin(ctx, userID, false)
}

func (s *AdminStore) setUserAdmin(ctx context.Context, userID string, isAdmin bool) Result {
	if !s.guard() {
		return failed(ErrAdminRequired)
	}
	s.begin()

	err := s.backend.SetUserAdmin(ctx, userID, isAdmin)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error updating user privilege",
			zap.String(logger.FieldUID, userID), zap.Bool("is_admin", isAdmin), zap.Error(err))
		return failed(err)
	}
	for i, u := range s.allUsers {
		if u.UserID == userID {
			c := u.Clone()
			c.IsAdmin = isAdmin
			s.allUsers[i] = c
		}
	}
	return succeeded()
}

// InitializeAdminData checks the privilege and, only when granted, fetches
// notes and users concurrently. A failure of one fetch does not cancel the
// other. It returns the resolved privilege.
// InitializeAdminData 确认权限后并发拉取笔记和用户
func (s *AdminStore) InitializeAdminData(ctx context.Context) bool {
	if !s.CheckAdminStatus(ctx) {
		return false
	}

	var g errgroup.Group
	g.Go(func() error {
		s.FetchAllNotes(ctx)
		return nil
	})
	g.Go(func() error {
		s.FetchAllUsers(ctx)
		return nil
	})
	_ = g.Wait()
	return true
}

// ClearAdminData resets the privilege, the caches and the error. It never
// contacts the backend.
// ClearAdminData 重置权限与缓存，不访问后端
func (s *AdminStore) ClearAdminData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privilege = PrivilegeUnknown
	s.allNotes = nil
	s.allUsers = nil
	s.err = ""
	s.epoch++
}

// IsAdmin reports whether the cached privilege is Granted.
// IsAdmin 是否已确认为管理员
func (s *AdminStore) IsAdmin() bool {
	return s.guard()
}

func (s *AdminStore) Privilege() PrivilegeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.privilege
}

// AllNotes returns a copy of the cross-account note cache.
func (s *AdminStore) AllNotes() []*domain.AdminNote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAdminNotes(s.allNotes)
}

// AllUsers returns a copy of the user projection cache.
func (s *AdminStore) AllUsers() []*domain.AdminUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAdminUsers(s.allUsers)
}

// NotesByUser returns the cached notes owned by email.
func (s *AdminStore) NotesByUser(email string) []*domain.AdminNote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NotesByUser(cloneAdminNotes(s.allNotes), email)
}

func (s *AdminStore) TotalNotesCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.allNotes)
}

func (s *AdminStore) TotalUsersCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.allUsers)
}

// AdminUsers returns the cached users holding administrator rights.
// AdminUsers 管理员列表
func (s *AdminStore) AdminUsers() []*domain.AdminUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admins, _ := SplitUsers(cloneAdminUsers(s.allUsers))
	return admins
}

// RegularUsers returns the cached users without administrator rights.
// RegularUsers 普通用户列表
func (s *AdminStore) RegularUsers() []*domain.AdminUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, regular := SplitUsers(cloneAdminUsers(s.allUsers))
	return regular
}

func (s *AdminStore) beginEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginLocked()
	return s.epoch
}

func cloneAdminNotes(in []*domain.AdminNote) []*domain.AdminNote {
	if in == nil {
		return nil
	}
	out := make([]*domain.AdminNote, len(in))
	for i, n := range in {
		out[i] = n.Clone()
	}
	return out
}

func cloneAdminUsers(in []*domain.AdminUser) []*domain.AdminUser {
	if in == nil {
		return nil
	}
	out := make([]*domain.AdminUser, len(in))
	for i, u := range in {
		out[i] = u.Clone()
	}
	return out
}
