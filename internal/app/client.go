package app

import (
	"context"

	"github.com/haierkeys/fast-note-client/internal/backend"
	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/store"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Client 客户端容器：一个后端连接加三个状态存储
type Client struct {
	Backend domain.Backend
	Session *store.SessionStore
	Notes   *store.NotesStore
	Admin   *store.AdminStore

	// embedded 模式下持有的参考后端
	server *App
	logger *zap.Logger
}

// NewClient 按 client.mode 创建客户端，会话持久化到 client.session-file
func NewClient(cfg *AppConfig, logger *zap.Logger) (*Client, error) {
	tokens := backend.NewFileTokenStorage(cfg.Client.SessionFile)

	switch cfg.Client.Mode {
	case ClientModeRemote:
		b, err := backend.NewRemote(backend.RemoteConfig{
			BaseURL: cfg.Client.BaseURL,
			Timeout: cfg.GetRequestTimeout(),
		}, tokens, logger)
		if err != nil {
			return nil, err
		}
		return NewClientWithBackend(b, logger), nil

	case ClientModeEmbedded:
		server, err := OpenApp(cfg, logger)
		if err != nil {
			return nil, err
		}
		c := NewClientWithBackend(backend.NewEmbedded(server.Services(), tokens, logger), logger)
		c.server = server
		return c, nil
	}
	return nil, errors.Errorf("unsupported client mode %q", cfg.Client.Mode)
}

// NewClientWithBackend 基于已有后端创建客户端
func NewClientWithBackend(b domain.Backend, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	session := store.NewSessionStore(b, logger)
	return &Client{
		Backend: b,
		Session: session,
		Notes:   store.NewNotesStore(b, session, logger),
		Admin:   store.NewAdminStore(b, logger),
		logger:  logger,
	}
}

// Start 恢复已保存的会话并注册会话监听
func (c *Client) Start(ctx context.Context) {
	c.Session.CheckAuth(ctx)
}

// Logout 登出；成功后清空笔记与管理员缓存
func (c *Client) Logout(ctx context.Context) store.Result {
	res := c.Session.Logout(ctx)
	if res.Success {
		c.Admin.ClearAdminData()
		c.Notes.Reset()
	}
	return res
}

// Close 释放 embedded 模式下的数据库连接
func (c *Client) Close() error {
	if c.server != nil {
		return c.server.Close()
	}
	return nil
}
