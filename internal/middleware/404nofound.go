package middleware

import (
	"github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound 404 handler
// NoFound 404 处理，未注册的路由与方法统一返回信封
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToResponse(code.ErrorNotFound.WithDetails(c.Request.Method + " " + c.Request.URL.Path))
		c.Abort()
	}
}
