// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"errors"
	"slices"

	"github.com/haierkeys/fast-note-client/pkg/code"

	"gorm.io/gorm"
)

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User UserServiceConfig // User related config // 用户相关配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool     // Whether registration is enabled // 注册是否启用
	AdminEmails      []string // Emails granted admin on sign-up // 注册时自动成为管理员的邮箱
}

// IsAdminEmail reports whether email is seeded as administrator.
func (c UserServiceConfig) IsAdminEmail(email string) bool {
	return slices.Contains(c.AdminEmails, email)
}

// dbError maps a repository error onto the error-code catalogue.
// Record-not-found becomes notFound; anything else is a query failure.
func dbError(err error, notFound *code.Code) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return code.ErrorDBQuery.WithDetails(err.Error())
}
