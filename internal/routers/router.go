package routers

import (
	"time"

	"github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/middleware"
	"github.com/haierkeys/fast-note-client/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// NewRouter builds the gateway engine serving the auth, rest and rpc surfaces
// NewRouter 创建网关路由
// metrics 为空时不采集请求指标
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator, metrics *middleware.Metrics) *gin.Engine {
	cfg := appContainer.Config()
	logger := appContainer.Logger()

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.TraceMiddleware(cfg.Tracer.Header))
	r.Use(middleware.AppInfo(app.Name, appContainer.Version()))
	if metrics != nil {
		r.Use(metrics.Handler())
	}
	r.Use(middleware.ContextTimeout(time.Duration(cfg.Server.DefaultContextTimeout) * time.Second))
	r.Use(middleware.LangWithTranslator(uni))
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.RecoveryWithLogger(logger))

	// 创建 Handlers（注入 App Container）
	authHandler := api_router.NewAuthHandler(appContainer)
	noteHandler := api_router.NewNoteHandler(appContainer)
	folderHandler := api_router.NewFolderHandler(appContainer)
	adminHandler := api_router.NewAdminHandler(appContainer)
	healthHandler := api_router.NewHealthHandler(appContainer)
	versionHandler := api_router.NewVersionHandler(appContainer)

	r.GET("/health", healthHandler.Check)
	r.GET("/version", versionHandler.ServerVersion)

	userAuth := middleware.UserAuthToken(appContainer.AuthService)

	auth := r.Group("/auth/v1")
	{
		auth.Use(middleware.RateLimiter(middleware.NewIPLimiter(middleware.LimiterBucketRule{
			FillInterval: time.Second,
			Capacity:     cfg.Server.AuthRateLimit,
			Quantum:      cfg.Server.AuthRateLimit,
		})))
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/token", authHandler.Token)
		auth.POST("/logout", userAuth, authHandler.Logout)
		auth.GET("/user", userAuth, authHandler.User)
	}

	rest := r.Group("/rest/v1", userAuth)
	{
		rest.GET("/notes", noteHandler.List)
		rest.POST("/notes", noteHandler.Create)
		rest.PATCH("/notes/:id", noteHandler.Update)
		rest.DELETE("/notes/:id", noteHandler.Delete)

		rest.GET("/folders", folderHandler.List)
		rest.POST("/folders", folderHandler.Create)

		rest.PATCH("/user_profiles/:id", adminHandler.UpdateProfile)
		rest.POST("/rpc/:name", adminHandler.RPC)
	}

	r.NoRoute(middleware.NoFound())
	r.NoMethod(middleware.NoFound())

	return r
}
