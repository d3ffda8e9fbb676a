package dao

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	tags := slices.Clone(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &domain.Note{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Content:     domain.Document(maps.Clone(m.Content)),
		ContentText: m.ContentText,
		FolderID:    m.FolderID,
		Tags:        tags,
		IsFavorite:  m.IsFavorite,
		IsArchived:  m.IsArchived,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	if n == nil {
		return nil
	}
	return &model.Note{
		ID:          n.ID,
		UserID:      n.UserID,
		Title:       n.Title,
		Content:     maps.Clone(n.Content),
		ContentText: n.ContentText,
		FolderID:    n.FolderID,
		Tags:        slices.Clone(n.Tags),
		IsFavorite:  n.IsFavorite,
		IsArchived:  n.IsArchived,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func (r *noteRepository) toDomainList(ms []*model.Note) []*domain.Note {
	out := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out
}

// patchModel 把补丁转换为待更新的列名和取值
func patchModel(p domain.NotePatch) ([]string, *model.Note) {
	m := &model.Note{}
	var cols []string
	if p.Title != nil {
		m.Title = *p.Title
		cols = append(cols, "title")
	}
	if p.Content != nil {
		m.Content = maps.Clone(p.Content)
		cols = append(cols, "content")
	}
	if p.ContentText != nil {
		m.ContentText = *p.ContentText
		cols = append(cols, "content_text")
	}
	if p.FolderID != nil {
		if *p.FolderID != "" {
			f := *p.FolderID
			m.FolderID = &f
		}
		cols = append(cols, "folder_id")
	}
	if p.Tags != nil {
		m.Tags = slices.Clone(p.Tags)
		cols = append(cols, "tags")
	}
	if p.IsFavorite != nil {
		m.IsFavorite = *p.IsFavorite
		cols = append(cols, "is_favorite")
	}
	if p.IsArchived != nil {
		m.IsArchived = *p.IsArchived
		cols = append(cols, "is_archived")
	}
	m.UpdatedAt = time.Now()
	cols = append(cols, "updated_at")
	return cols, m
}

// List 获取用户笔记，按更新时间倒序
func (r *noteRepository) List(ctx context.Context, uid string, includeArchived bool) ([]*domain.Note, error) {
	var ms []*model.Note
	q := r.dao.WithContext(ctx).Where("user_id = ?", uid)
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	if err := q.Order("updated_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id, uid string) (*domain.Note, error) {
	m := &model.Note{}
	err := r.dao.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).First(m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if err := r.dao.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 部分更新笔记
func (r *noteRepository) Update(ctx context.Context, id, uid string, patch domain.NotePatch) (*domain.Note, error) {
	cols, values := patchModel(patch)
	res := r.dao.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ? AND user_id = ?", id, uid).
		Select(cols).
		Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id, uid)
}

// Delete 删除笔记
func (r *noteRepository) Delete(ctx context.Context, id, uid string) error {
	res := r.dao.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).Delete(&model.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdminList 获取所有用户的笔记
func (r *noteRepository) AdminList(ctx context.Context) ([]*domain.Note, error) {
	var ms []*model.Note
	if err := r.dao.WithContext(ctx).Order("updated_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

// AdminUpdate 跨用户部分更新笔记
func (r *noteRepository) AdminUpdate(ctx context.Context, id string, patch domain.NotePatch) (*domain.Note, error) {
	cols, values := patchModel(patch)
	res := r.dao.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Select(cols).
		Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	m := &model.Note{}
	if err := r.dao.WithContext(ctx).Where("id = ?", id).First(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// AdminDelete 跨用户删除笔记
func (r *noteRepository) AdminDelete(ctx context.Context, id string) error {
	res := r.dao.WithContext(ctx).Where("id = ?", id).Delete(&model.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByUser 按用户统计笔记数量
func (r *noteRepository) CountByUser(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		UserID string
		Count  int64
	}
	err := r.dao.WithContext(ctx).
		Model(&model.Note{}).
		Select("user_id, COUNT(*) AS count").
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Count
	}
	return out, nil
}

// 确保 noteRepository 实现了 domain.NoteRepository 接口
var _ domain.NoteRepository = (*noteRepository)(nil)
