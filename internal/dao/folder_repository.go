package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/model"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// folderRepository 实现 domain.FolderRepository 接口
type folderRepository struct {
	dao *Dao
}

// NewFolderRepository 创建 FolderRepository 实例
func NewFolderRepository(dao *Dao) domain.FolderRepository {
	return &folderRepository{dao: dao}
}

func (r *folderRepository) toDomain(m *model.Folder) *domain.Folder {
	if m == nil {
		return nil
	}
	out := &domain.Folder{}
	_ = copier.Copy(out, m)
	return out
}

// List 获取用户文件夹，按名称排序
func (r *folderRepository) List(ctx context.Context, uid string) ([]*domain.Folder, error) {
	var ms []*model.Folder
	err := r.dao.WithContext(ctx).Where("user_id = ?", uid).Order("name ASC").Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Folder, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

// GetByID 根据ID获取文件夹
func (r *folderRepository) GetByID(ctx context.Context, id, uid string) (*domain.Folder, error) {
	m := &model.Folder{}
	if err := r.dao.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).First(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Create 创建文件夹
func (r *folderRepository) Create(ctx context.Context, folder *domain.Folder) (*domain.Folder, error) {
	m := &model.Folder{}
	if err := copier.Copy(m, folder); err != nil {
		return nil, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := r.dao.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

var _ domain.FolderRepository = (*folderRepository)(nil)
