package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	internalApp "github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/middleware"
	"github.com/haierkeys/fast-note-client/internal/routers"
	"github.com/haierkeys/fast-note-client/internal/task"
	pkgapp "github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultSecretKeys defines the list of default secret keys to be detected
// defaultSecretKeys 定义需要检测的默认密钥列表
var defaultSecretKeys = []string{
	"fast-note-client-Auth-Token",
	"",
}

// DefaultShutdownTimeout default shutdown timeout duration
// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

type Server struct {
	logger            *zap.Logger            // Logger // 日志对象
	config            *internalApp.AppConfig // App configuration // 应用配置
	httpServer        *http.Server
	privateHttpServer *http.Server
	app               *internalApp.App // App Container
	tasks             *task.Manager

	cancel context.CancelFunc
	done   chan error
}

// checkSecurityConfigWithConfig checks security configuration, outputs warning if using default keys
// checkSecurityConfig 检查安全配置，如果使用默认密钥则输出警告
func checkSecurityConfigWithConfig(cfg *internalApp.AppConfig, lg *zap.Logger) {
	for _, key := range defaultSecretKeys {
		if cfg.Security.AuthTokenKey == key {
			fmt.Println()
			fmt.Println(strings.Repeat("=", 60))
			fmt.Println("SECURITY WARNING: Using default secret key!")
			fmt.Println()
			fmt.Println("Please modify 'security.auth-token-key' in config.yaml")
			fmt.Println("Generate a secure key with:")
			fmt.Println("  openssl rand -base64 32")
			fmt.Println(strings.Repeat("=", 60))
			fmt.Println()
			lg.Warn("Using default secret key - please change security.auth-token-key in config.yaml")
			return
		}
	}
}

// NewServer 加载配置并组装网关、私有路由与定时任务，但不监听端口
func NewServer(flags *serveFlags) (*Server, error) {
	appConfig, lg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// Determine run mode
	// 确定运行模式
	runMode := flags.runMode
	if len(runMode) <= 0 {
		runMode = appConfig.Server.RunMode
	}
	if len(runMode) > 0 {
		gin.SetMode(runMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if len(flags.port) > 0 {
		appConfig.Server.HttpPort = flags.port
	}

	s := &Server{config: appConfig, logger: lg}

	checkSecurityConfigWithConfig(appConfig, s.logger)

	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	app, err := internalApp.OpenApp(appConfig, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app

	uni, err := pkgapp.InitValidator()
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("initValidator: %w", err)
	}

	if err := code.SetGlobalDefaultLang("en"); err != nil {
		s.logger.Warn("set default lang", zap.Error(err))
	}

	s.tasks = task.NewManager(s.logger, s.app)
	if err := s.tasks.RegisterTasks(); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to register tasks: %w", err)
	}

	// 每个 Server 使用独立的 registry，配置热重载时不会重复注册
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.httpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewRouter(s.app, uni, metrics),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.privateHttpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewPrivateRouter(runMode, appConfig.Server.PrivateAuthToken, registry, s.logger),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
	}

	s.logger.Warn(fmt.Sprintf("%s v%s\nGit: %s\nBuildTime: %s\n", internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	s.logger.Warn("config loaded", zap.String("path", appConfig.File))

	return s, nil
}

// Start 启动 HTTP 服务与定时任务；任一服务异常退出会触发整体关闭
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan error, 1)

	g, gctx := errgroup.WithContext(ctx)

	for _, srv := range []*http.Server{s.httpServer, s.privateHttpServer} {
		if srv == nil {
			continue
		}
		srv := srv
		g.Go(func() error {
			s.logger.Warn("api_router", zap.String("listen", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("api service err", zap.String("listen", srv.Addr), zap.Error(err))
				return err
			}
			return nil
		})
	}

	s.tasks.Start()

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	go func() {
		s.done <- g.Wait()
	}()
}

func (s *Server) shutdown() error {
	var errs []error

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{s.httpServer, s.privateHttpServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}

	if err := s.tasks.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	appCtx, appCancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer appCancel()
	if err := s.app.Shutdown(appCtx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Done 在服务全部停止后返回结果
func (s *Server) Done() <-chan error {
	return s.done
}

// Stop 发送关闭信号并等待所有组件退出
func (s *Server) Stop() error {
	if s.cancel == nil {
		return s.app.Shutdown(context.Background())
	}
	s.cancel()
	return <-s.done
}

// initStorageWithConfig initializes storage directory (using injected config)
// initStorageWithConfig 初始化存储目录（使用注入的配置）
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	dirs := []string{
		filepath.Dir(cfg.Log.File),
		filepath.Dir(cfg.Client.SessionFile),
	}
	if cfg.Database.Type == "sqlite" {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
