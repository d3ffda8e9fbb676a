package service

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"
	"github.com/haierkeys/fast-note-client/pkg/logger"
	"github.com/haierkeys/fast-note-client/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService 定义认证业务服务接口
type AuthService interface {
	// SignUp 注册账户，不创建会话
	SignUp(ctx context.Context, email, password string) (*domain.Identity, error)

	// SignIn 校验凭证并签发会话
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)

	// SignOut 吊销 token 对应的会话
	SignOut(ctx context.Context, token string) error

	// Authenticate 校验 token 且会话未被吊销，返回用户
	Authenticate(ctx context.Context, token string) (*domain.User, *domain.Session, error)

	// CleanupExpiredSessions 删除过期会话
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// authService 实现 AuthService 接口
type authService struct {
	userRepo     domain.UserRepository
	sessionRepo  domain.SessionRepository
	tokenManager app.TokenManager
	logger       *zap.Logger
	config       *ServiceConfig
	now          func() time.Time
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(userRepo domain.UserRepository, sessionRepo domain.SessionRepository, tokenManager app.TokenManager, logger *zap.Logger, config *ServiceConfig) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		tokenManager: tokenManager,
		logger:       logger,
		config:       config,
		now:          time.Now,
	}
}

// SignUp 用户注册
func (s *authService) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	// 检查注册是否启用
	if s.config == nil || !s.config.User.RegisterIsEnable {
		return nil, code.ErrorUserRegisterIsDisable
	}

	email = util.NormalizeEmail(email)
	if !util.IsValidEmail(email) {
		return nil, code.ErrorEmailNotValid
	}
	if len(password) < util.MinPasswordLength {
		return nil, code.ErrorPasswordNotValid
	}

	// 检查邮箱是否已存在
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorUserEmailAlreadyExists
	}

	// 生成密码哈希
	hash, err := util.GeneratePasswordHash(password)
	if err != nil {
		return nil, code.ErrorPasswordNotValid
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Email:    email,
		Password: hash,
		IsAdmin:  s.config.User.IsAdminEmail(email),
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.logger.Info("user registered",
		zap.String(logger.FieldUID, user.ID),
		zap.String(logger.FieldEmail, user.Email),
		zap.Bool("is_admin", user.IsAdmin))
	return user.Identity(), nil
}

// SignIn 用户登录
func (s *authService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = util.NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// 安全考虑：不暴露用户是否存在，统一返回凭证错误
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorUserLoginPasswordFailed
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	// 验证密码
	if !util.CheckPasswordHash(user.Password, password) {
		return nil, code.ErrorUserLoginPasswordFailed
	}

	// 生成 Token
	token, claims, err := s.tokenManager.Generate(user.ID, user.Email)
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}

	err = s.sessionRepo.Create(ctx, &domain.AuthSession{
		ID:        claims.ID,
		UserID:    user.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	if err := s.userRepo.UpdateLastSignIn(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn("update last sign in failed", zap.String(logger.FieldUID, user.ID), zap.Error(err))
	}

	return &domain.Session{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user.Identity(),
	}, nil
}

// SignOut 用户登出
func (s *authService) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokenManager.Parse(token)
	if err != nil {
		return code.ErrorInvalidUserAuthToken
	}
	if err := s.sessionRepo.Delete(ctx, claims.ID); err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	s.logger.Debug("session revoked", zap.String(logger.FieldUID, claims.UID), zap.String(logger.FieldSessionID, claims.ID))
	return nil
}

// Authenticate 校验 token
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	if token == "" {
		return nil, nil, code.ErrorNotUserAuthToken
	}
	claims, err := s.tokenManager.Parse(token)
	if err != nil {
		return nil, nil, code.ErrorInvalidUserAuthToken
	}

	session, err := s.sessionRepo.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, code.ErrorInvalidUserAuthToken
		}
		return nil, nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !s.now().Before(session.ExpiresAt) {
		return nil, nil, code.ErrorInvalidUserAuthToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UID)
	if err != nil {
		return nil, nil, dbError(err, code.ErrorInvalidUserAuthToken)
	}
	return user, &domain.Session{
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
		User:        user.Identity(),
	}, nil
}

// CleanupExpiredSessions 删除过期会话
func (s *authService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessionRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return n, nil
}
