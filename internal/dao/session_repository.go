package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/model"

	"github.com/jinzhu/copier"
)

// sessionRepository 实现 domain.SessionRepository 接口
type sessionRepository struct {
	dao *Dao
}

// NewSessionRepository 创建 SessionRepository 实例
func NewSessionRepository(dao *Dao) domain.SessionRepository {
	return &sessionRepository{dao: dao}
}

// Create 创建会话
func (r *sessionRepository) Create(ctx context.Context, session *domain.AuthSession) error {
	m := &model.AuthSession{}
	if err := copier.Copy(m, session); err != nil {
		return err
	}
	return r.dao.WithContext(ctx).Create(m).Error
}

// GetByID 根据ID获取会话
func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.AuthSession, error) {
	m := &model.AuthSession{}
	if err := r.dao.WithContext(ctx).Where("id = ?", id).First(m).Error; err != nil {
		return nil, err
	}
	out := &domain.AuthSession{}
	if err := copier.Copy(out, m); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete 删除会话
func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.dao.WithContext(ctx).Where("id = ?", id).Delete(&model.AuthSession{}).Error
}

// DeleteExpired 删除过期会话
func (r *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.dao.WithContext(ctx).Where("expires_at < ?", before).Delete(&model.AuthSession{})
	return res.RowsAffected, res.Error
}

var _ domain.SessionRepository = (*sessionRepository)(nil)
