package store

import (
	"context"
	"sync/atomic"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/pkg/logger"

	"go.uber.org/zap"
)

// SessionStore owns the current authenticated identity and mirrors
// external session transitions into it.
// SessionStore 会话状态，持有当前登录身份
type SessionStore struct {
	status

	backend domain.AuthBackend
	logger  *zap.Logger

	user        *domain.Identity
	initialized bool

	// listenerSetup guards the one change listener per process.
	listenerSetup atomic.Bool
	subscription  domain.Subscription
}

// NewSessionStore creates a SessionStore. A nil logger disables logging.
// NewSessionStore 创建会话 store
func NewSessionStore(backend domain.AuthBackend, l *zap.Logger) *SessionStore {
	if l == nil {
		l = zap.NewNop()
	}
	return &SessionStore{
		backend: backend,
		logger:  l.With(zap.String(logger.FieldStore, "auth")),
	}
}

// Login signs in and, on success, sets the current identity. On failure the
// current identity is left untouched.
// Login 登录，成功后设置当前身份
func (s *SessionStore) Login(ctx context.Context, email, password string) Result {
	s.begin()

	session, err := s.backend.SignIn(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Warn("login failed", zap.String(logger.FieldEmail, email), zap.Error(err))
		return failed(err)
	}
	s.user = identityOf(session)
	return succeeded()
}

// Register creates an account. It never establishes a local session; the
// backend may still require email verification.
// Register 注册账号，不建立本地会话
func (s *SessionStore) Register(ctx context.Context, email, password string) IdentityResult {
	s.begin()

	user, err := s.backend.SignUp(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Warn("register failed", zap.String(logger.FieldEmail, email), zap.Error(err))
		return IdentityResult{Result: failed(err)}
	}
	return IdentityResult{Result: succeeded(), User: user.Clone()}
}

// Logout revokes the remote session and then clears the local identity.
// On remote failure the local identity is kept.
// Logout 退出登录，服务端确认后清除本地身份
func (s *SessionStore) Logout(ctx context.Context) Result {
	s.begin()
	s.logger.Debug("attempting logout")

	err := s.backend.SignOut(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error during logout", zap.Error(err))
		return failed(err)
	}
	s.user = nil
	s.logger.Debug("logout successful")
	return succeeded()
}

// CheckAuth resolves the current remote session into the local identity and
// attaches the session-change listener on first use. It is safe to call
// any number of times: the listener is registered at most once. Initialized
// is set even when the lookup fails.
// CheckAuth 检查当前会话并注册唯一的会话变更监听
func (s *SessionStore) CheckAuth(ctx context.Context) Result {
	session, err := s.backend.GetSession(ctx)

	s.mu.Lock()
	if err != nil {
		s.logger.Error("Error checking auth", zap.Error(err))
		s.user = nil
		s.err = err.Error()
	} else {
		s.user = identityOf(session)
	}
	s.initialized = true
	s.mu.Unlock()

	s.ensureListener()

	if err != nil {
		return failed(err)
	}
	return succeeded()
}

func (s *SessionStore) ensureListener() {
	if !s.listenerSetup.CompareAndSwap(false, true) {
		return
	}
	sub := s.backend.OnAuthStateChange(s.onAuthStateChange)

	s.mu.Lock()
	s.subscription = sub
	s.mu.Unlock()
}

func (s *SessionStore) onAuthStateChange(event domain.AuthEvent, session *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// 初始会话由 CheckAuth 的查询结果决定，回放的本地 token 未经服务端校验
	if event == domain.AuthEventInitialSession {
		s.logger.Debug("initial session replay ignored")
		return
	}
	s.user = identityOf(session)
	s.logger.Debug("session changed", zap.String(logger.FieldAction, string(event)))
}

// IsAuthenticated reports whether an identity is set.
// IsAuthenticated 是否已登录
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the current identity, or nil.
// User 返回当前身份的副本
func (s *SessionStore) User() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Initialized reports whether CheckAuth has completed at least once.
// Initialized CheckAuth 是否已完成
func (s *SessionStore) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Subscription returns the handle of the registered change listener.
func (s *SessionStore) Subscription() (domain.Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscription, s.listenerSetup.Load()
}

func identityOf(session *domain.Session) *domain.Identity {
	if session == nil {
		return nil
	}
	return session.User.Clone()
}
