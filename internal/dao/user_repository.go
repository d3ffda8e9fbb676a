package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

// userRow 用户与资料的联表结果
type userRow struct {
	model.User
	IsAdmin bool `gorm:"column:is_admin"`
}

// toDomain 将数据库模型转换为领域模型
func (r *userRepository) toDomain(m *userRow) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Password:     m.Password,
		IsAdmin:      m.IsAdmin,
		LastSignInAt: m.LastSignInAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *userRepository) query(ctx context.Context) *gorm.DB {
	return r.dao.WithContext(ctx).
		Table("users").
		Select("users.*, COALESCE(user_profiles.is_admin, ?) AS is_admin", false).
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = users.id")
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := &userRow{}
	if err := r.query(ctx).Where("users.id = ?", id).Take(row).Error; err != nil {
		return nil, err
	}
	return r.toDomain(row), nil
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := &userRow{}
	if err := r.query(ctx).Where("users.email = ?", email).Take(row).Error; err != nil {
		return nil, err
	}
	return r.toDomain(row), nil
}

// Create 创建用户及其资料行
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := &model.User{
		ID:       user.ID,
		Email:    user.Email,
		Password: user.Password,
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	err := r.dao.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserProfile{UserID: m.ID, IsAdmin: user.IsAdmin}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(&userRow{User: *m, IsAdmin: user.IsAdmin}), nil
}

// List 获取所有用户，按注册时间排序
func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	var rows []*userRow
	if err := r.query(ctx).Order("users.created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.toDomain(row))
	}
	return out, nil
}

// UpdateIsAdmin 更新 user_profiles.is_admin，资料行不存在时创建
func (r *userRepository) UpdateIsAdmin(ctx context.Context, id string, isAdmin bool) error {
	var count int64
	if err := r.dao.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	profile := &model.UserProfile{UserID: id, IsAdmin: isAdmin}
	return r.dao.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{"is_admin": isAdmin, "updated_at": time.Now()}),
	}).Create(profile).Error
}

// UpdateLastSignIn 更新最后登录时间
func (r *userRepository) UpdateLastSignIn(ctx context.Context, id string, at time.Time) error {
	return r.dao.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_sign_in_at", at).Error
}

var _ domain.UserRepository = (*userRepository)(nil)
