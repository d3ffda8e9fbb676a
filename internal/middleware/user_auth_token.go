package middleware

import (
	"errors"
	"strings"

	"github.com/haierkeys/fast-note-client/internal/service"
	"github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"

	"github.com/gin-gonic/gin"
)

// ContextSessionKey holds the *domain.Session of the authenticated request.
const ContextSessionKey = "user_session"

// BearerToken 按优先级获取 Token：Authorization 请求头 -> token 参数
func BearerToken(c *gin.Context) string {
	if s := c.GetHeader("Authorization"); s != "" {
		if t, ok := strings.CutPrefix(s, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
		return strings.TrimSpace(s)
	}
	return c.Query("token")
}

// UserAuthToken 用户 Token 认证中间件
// Token 需通过签名校验且对应的服务端会话未被撤销
func UserAuthToken(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			app.NewResponse(c).ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		user, session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			app.NewResponse(c).ToResponse(authError(err))
			c.Abort()
			return
		}

		c.Set(app.ContextUserKey, &app.UserEntity{UID: user.ID, Email: user.Email})
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

func authError(err error) *code.Code {
	var c *code.Code
	if errors.As(err, &c) {
		return c
	}
	return code.ErrorServerInternal.WithDetails(err.Error())
}
