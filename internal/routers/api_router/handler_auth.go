package api_router

import (
	"github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/dto"
	"github.com/haierkeys/fast-note-client/internal/middleware"
	pkgapp "github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"
	apperrors "github.com/haierkeys/fast-note-client/pkg/errors"
	"github.com/haierkeys/fast-note-client/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler authentication API router handler
// AuthHandler 认证 API 路由处理器
type AuthHandler struct {
	*Handler
}

// NewAuthHandler creates AuthHandler instance
// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(a *app.App) *AuthHandler {
	return &AuthHandler{Handler: NewHandler(a)}
}

// Signup handles user registration
// Signup 处理用户注册，返回新用户身份
func (h *AuthHandler) Signup(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CredentialsRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	identity, err := h.App.AuthService.SignUp(c.Request.Context(), params.Email, params.Password)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(identity))
}

// Token handles password sign-in and issues a session
// Token 处理密码登录，签发会话
func (h *AuthHandler) Token(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CredentialsRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	session, err := h.App.AuthService.SignIn(c.Request.Context(), params.Email, params.Password)
	if err != nil {
		h.App.Logger().Info("sign in rejected",
			zap.String(logger.FieldTraceID, middleware.GetTraceIDFromGin(c)),
			zap.String(logger.FieldEmail, params.Email),
			zap.Error(err))
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(session))
}

// Logout revokes the bearer token's session
// Logout 撤销当前令牌对应的会话
func (h *AuthHandler) Logout(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	if err := h.App.AuthService.SignOut(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success)
}

// User returns the session the bearer token belongs to
// User 返回当前令牌对应的会话
func (h *AuthHandler) User(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	session, ok := c.Get(middleware.ContextSessionKey)
	if !ok {
		response.ToResponse(code.ErrorNotAuthenticated)
		return
	}
	response.ToResponse(code.Success.WithData(session))
}
