package service

import (
	"context"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/pkg/code"
	"github.com/haierkeys/fast-note-client/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AdminService 定义管理员业务服务接口
// 除 IsAdmin 外，每个方法都会重新校验调用者权限
type AdminService interface {
	// IsAdmin is_current_user_admin
	IsAdmin(ctx context.Context, uid string) (bool, error)

	// AllNotes get_all_notes_admin
	AllNotes(ctx context.Context, uid string) ([]*domain.AdminNote, error)

	// AllUsers get_all_users_admin
	AllUsers(ctx context.Context, uid string) ([]*domain.AdminUser, error)

	// UpdateNote admin_update_note
	UpdateNote(ctx context.Context, uid, noteID string, patch domain.NotePatch) error

	// DeleteNote admin_delete_note
	DeleteNote(ctx context.Context, uid, noteID string) error

	// SetUserAdmin 写 user_profiles.is_admin
	SetUserAdmin(ctx context.Context, uid, targetID string, isAdmin bool) error
}

type adminService struct {
	userRepo domain.UserRepository
	noteRepo domain.NoteRepository
	logger   *zap.Logger
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(userRepo domain.UserRepository, noteRepo domain.NoteRepository, logger *zap.Logger) AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &adminService{userRepo: userRepo, noteRepo: noteRepo, logger: logger}
}

func (s *adminService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		return false, dbError(err, code.ErrorUserNotFound)
	}
	return user.IsAdmin, nil
}

func (s *adminService) require(ctx context.Context, uid string) error {
	ok, err := s.IsAdmin(ctx, uid)
	if err != nil {
		return err
	}
	if !ok {
		return code.ErrorAdminRequired
	}
	return nil
}

func (s *adminService) AllNotes(ctx context.Context, uid string) ([]*domain.AdminNote, error) {
	if err := s.require(ctx, uid); err != nil {
		return nil, err
	}

	var (
		notes []*domain.Note
		users []*domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		notes, err = s.noteRepo.AdminList(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.userRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}
	out := make([]*domain.AdminNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, &domain.AdminNote{
			NoteID:          n.ID,
			NoteTitle:       n.Title,
			NoteContent:     n.Content,
			NoteContentText: n.ContentText,
			NoteFolderID:    n.FolderID,
			NoteTags:        n.Tags,
			NoteIsFavorite:  n.IsFavorite,
			NoteIsArchived:  n.IsArchived,
			NoteCreatedAt:   n.CreatedAt,
			NoteUpdatedAt:   n.UpdatedAt,
			UserID:          n.UserID,
			UserEmail:       emails[n.UserID],
		})
	}
	return out, nil
}

func (s *adminService) AllUsers(ctx context.Context, uid string) ([]*domain.AdminUser, error) {
	if err := s.require(ctx, uid); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	counts, err := s.noteRepo.CountByUser(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	out := make([]*domain.AdminUser, 0, len(users))
	for _, u := range users {
		out = append(out, &domain.AdminUser{
			UserID:       u.ID,
			Email:        u.Email,
			IsAdmin:      u.IsAdmin,
			NoteCount:    counts[u.ID],
			CreatedAt:    u.CreatedAt,
			LastSignInAt: u.LastSignInAt,
		})
	}
	return out, nil
}

func (s *adminService) UpdateNote(ctx context.Context, uid, noteID string, patch domain.NotePatch) error {
	if err := s.require(ctx, uid); err != nil {
		return err
	}
	if _, err := s.noteRepo.AdminUpdate(ctx, noteID, patch); err != nil {
		return dbError(err, code.ErrorNoteNotFound)
	}
	s.logger.Info("admin updated note", zap.String(logger.FieldUID, uid), zap.String(logger.FieldNoteID, noteID))
	return nil
}

func (s *adminService) DeleteNote(ctx context.Context, uid, noteID string) error {
	if err := s.require(ctx, uid); err != nil {
		return err
	}
	if err := s.noteRepo.AdminDelete(ctx, noteID); err != nil {
		return dbError(err, code.ErrorNoteNotFound)
	}
	s.logger.Info("admin deleted note", zap.String(logger.FieldUID, uid), zap.String(logger.FieldNoteID, noteID))
	return nil
}

func (s *adminService) SetUserAdmin(ctx context.Context, uid, targetID string, isAdmin bool) error {
	if err := s.require(ctx, uid); err != nil {
		return err
	}
	if err := s.userRepo.UpdateIsAdmin(ctx, targetID, isAdmin); err != nil {
		return dbError(err, code.ErrorUserNotFound)
	}
	s.logger.Info("user privilege changed",
		zap.String(logger.FieldUID, uid), zap.String("target", targetID), zap.Bool("is_admin", isAdmin))
	return nil
}
