package service

import (
	"context"
	"strings"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/pkg/code"
)

// NoteService 定义笔记业务服务接口
// 所有方法均以 uid 为行级访问边界
type NoteService interface {
	// List 获取笔记列表
	List(ctx context.Context, uid string, q domain.NoteQuery) ([]*domain.Note, error)

	// Create 创建笔记
	Create(ctx context.Context, uid string, in *domain.NoteInsert) (*domain.Note, error)

	// Update 部分更新笔记，返回完整行对应的补丁
	Update(ctx context.Context, uid, id string, patch domain.NotePatch) (*domain.NotePatch, error)

	// Delete 删除笔记
	Delete(ctx context.Context, uid, id string) error
}

// FolderService 定义文件夹业务服务接口
type FolderService interface {
	List(ctx context.Context, uid string) ([]*domain.Folder, error)
	Create(ctx context.Context, uid string, in *domain.FolderInsert) (*domain.Folder, error)
}

type noteService struct {
	noteRepo   domain.NoteRepository
	folderRepo domain.FolderRepository
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, folderRepo domain.FolderRepository) NoteService {
	return &noteService{noteRepo: noteRepo, folderRepo: folderRepo}
}

func (s *noteService) List(ctx context.Context, uid string, q domain.NoteQuery) ([]*domain.Note, error) {
	notes, err := s.noteRepo.List(ctx, uid, q.IncludeArchived)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return notes, nil
}

// checkFolder 确认目标文件夹属于当前用户
func (s *noteService) checkFolder(ctx context.Context, uid string, folderID *string) error {
	if folderID == nil || *folderID == "" {
		return nil
	}
	_, err := s.folderRepo.GetByID(ctx, *folderID, uid)
	return dbError(err, code.ErrorFolderNotFound)
}

func (s *noteService) Create(ctx context.Context, uid string, in *domain.NoteInsert) (*domain.Note, error) {
	// 行级策略：只能以自己的身份写入
	if in.UserID != uid {
		return nil, code.ErrorInvalidParams.WithDetails("user_id does not match the session")
	}
	if err := s.checkFolder(ctx, uid, in.FolderID); err != nil {
		return nil, err
	}

	title := in.Title
	if strings.TrimSpace(title) == "" {
		title = domain.DefaultNoteTitle
	}
	content := in.Content
	if content == nil {
		content = domain.EmptyDocument()
	}
	folderID := in.FolderID
	if folderID != nil && *folderID == "" {
		folderID = nil
	}

	note, err := s.noteRepo.Create(ctx, &domain.Note{
		UserID:      uid,
		Title:       title,
		Content:     content,
		ContentText: in.ContentText,
		FolderID:    folderID,
		Tags:        in.Tags,
		IsFavorite:  in.IsFavorite,
		IsArchived:  in.IsArchived,
	})
	if err != nil {
		return nil, code.ErrorNoteCreateFailed.WithDetails(err.Error())
	}
	return note, nil
}

func (s *noteService) Update(ctx context.Context, uid, id string, patch domain.NotePatch) (*domain.NotePatch, error) {
	if err := s.checkFolder(ctx, uid, patch.FolderID); err != nil {
		return nil, err
	}
	note, err := s.noteRepo.Update(ctx, id, uid, patch)
	if err != nil {
		return nil, dbError(err, code.ErrorNoteNotFound)
	}
	return domain.PatchFromNote(note), nil
}

func (s *noteService) Delete(ctx context.Context, uid, id string) error {
	return dbError(s.noteRepo.Delete(ctx, id, uid), code.ErrorNoteNotFound)
}

type folderService struct {
	folderRepo domain.FolderRepository
}

// NewFolderService 创建 FolderService 实例
func NewFolderService(folderRepo domain.FolderRepository) FolderService {
	return &folderService{folderRepo: folderRepo}
}

func (s *folderService) List(ctx context.Context, uid string) ([]*domain.Folder, error) {
	folders, err := s.folderRepo.List(ctx, uid)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return folders, nil
}

func (s *folderService) Create(ctx context.Context, uid string, in *domain.FolderInsert) (*domain.Folder, error) {
	if in.UserID != uid {
		return nil, code.ErrorInvalidParams.WithDetails("user_id does not match the session")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, code.ErrorFolderNameEmpty
	}
	color := in.Color
	if color == "" {
		color = domain.DefaultFolderColor
	}
	folder, err := s.folderRepo.Create(ctx, &domain.Folder{
		UserID:      uid,
		Name:        name,
		Description: in.Description,
		Color:       color,
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return folder, nil
}
