package middleware

import (
	"github.com/haierkeys/fast-note-client/pkg/app"

	"github.com/gin-gonic/gin"
)

// AppInfo 在响应头中返回服务名称和版本
func AppInfo(name string, info app.VersionInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-App-Name", name)
		c.Header("X-App-Version", info.Version)
		c.Next()
	}
}
