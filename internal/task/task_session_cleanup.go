package task

import (
	"context"

	"github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/service"
	"github.com/haierkeys/fast-note-client/pkg/logger"

	"go.uber.org/zap"
)

// SessionCleanupTask 删除已过期的服务端会话
type SessionCleanupTask struct {
	auth   service.AuthService
	spec   string
	logger *zap.Logger
	app    *app.App
}

// Name 返回任务名称
func (t *SessionCleanupTask) Name() string {
	return "SessionCleanup"
}

// Spec 返回 cron 表达式
func (t *SessionCleanupTask) Spec() string {
	return t.spec
}

// IsStartupRun 是否立即执行一次
func (t *SessionCleanupTask) IsStartupRun() bool {
	return true
}

// Run 执行清理
func (t *SessionCleanupTask) Run(ctx context.Context) error {
	if t.app != nil {
		// 关闭过程中不再发起新的清理
		if t.app.IsShuttingDown() {
			return nil
		}
		defer t.app.TrackOperation()()
	}
	n, err := t.auth.CleanupExpiredSessions(ctx)
	if err != nil {
		return err
	}
	t.logger.Info("task log",
		zap.String("task", t.Name()),
		zap.Int64(logger.FieldCount, n),
		zap.String("msg", "success"))
	return nil
}

// NewSessionCleanupTask 创建会话清理任务；未配置 session-clean-spec 时不启用
func NewSessionCleanupTask(appContainer *app.App) (Task, error) {
	spec := appContainer.Config().Security.SessionCleanSpec
	if spec == "" {
		return nil, nil
	}
	return &SessionCleanupTask{
		auth:   appContainer.AuthService,
		spec:   spec,
		logger: appContainer.Logger(),
		app:    appContainer,
	}, nil
}

func init() {
	Register(NewSessionCleanupTask)
}
