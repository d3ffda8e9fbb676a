// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/haierkeys/fast-note-client/internal/dao"
	"github.com/haierkeys/fast-note-client/pkg/util"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// 客户端后端模式
const (
	// ClientModeEmbedded 进程内直接访问数据库
	ClientModeEmbedded = "embedded"
	// ClientModeRemote 通过 HTTP 网关访问
	ClientModeRemote = "remote"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	User     UserConfig     `yaml:"user"`
	Security SecurityConfig `yaml:"security"`
	Client   ClientConfig   `yaml:"client"`
	Tracer   TracerConfig   `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 网关配置
type ServerConfig struct {
	// RunMode 运行模式 debug | release | test
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 监听地址
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（/metrics）
	PrivateHttpListen string `yaml:"private-http-listen" default:":9001"`
	// PrivateAuthToken 访问私有路由所需的 Token，为空不校验
	PrivateAuthToken string `yaml:"private-auth-token"`
	// DefaultContextTimeout 请求上下文超时（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// AuthRateLimit /auth 路由每个 IP 每秒允许的请求数
	AuthRateLimit int64 `yaml:"auth-rate-limit" default:"10"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"fast-note-client-Auth-Token"`
	// TokenExpiry Token 过期时间，支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenExpiry string `yaml:"token-expiry" default:"7d"`
	// SessionCleanSpec 过期会话清理的 cron 表达式，为空不清理
	SessionCleanSpec string `yaml:"session-clean-spec" default:"@every 1h"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite | mysql | postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机，mysql 为 host:port
	Host string `yaml:"host"`
	// Port postgres 端口
	Port int `yaml:"port"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time"`
	// SSLMode postgres sslmode
	SSLMode string `yaml:"ssl-mode"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// UserConfig 用户配置
type UserConfig struct {
	// RegisterIsEnable 注册是否启用
	RegisterIsEnable bool `yaml:"register-is-enable" default:"true"`
	// AdminEmails 注册时自动授予管理员权限的邮箱
	AdminEmails []string `yaml:"admin-emails"`
}

// ClientConfig CLI 客户端配置
type ClientConfig struct {
	// Mode 后端模式 embedded | remote
	Mode string `yaml:"mode" default:"embedded"`
	// BaseURL remote 模式下的网关地址
	BaseURL string `yaml:"base-url"`
	// SessionFile 会话保存路径
	SessionFile string `yaml:"session-file" default:"storage/session.json"`
	// RequestTimeout remote 模式下单次请求超时
	RequestTimeout string `yaml:"request-timeout" default:"15s"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Header 追踪 ID 请求头名称
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// NewDefaultConfig 返回全部为默认值的配置
func NewDefaultConfig() (*AppConfig, error) {
	c := new(AppConfig)
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}
	return c, nil
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 先设置默认值，YAML 中出现的字段（包括 false）覆盖默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	if err := c.Validate(); err != nil {
		return nil, realpath, err
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
		return errors.Wrap(err, "create config dir failed")
	}
	if err := os.WriteFile(c.File, data, 0o644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// Validate 校验配置，remote 模式必须配置网关地址
func (c *AppConfig) Validate() error {
	if !slices.Contains([]string{"sqlite", "mysql", "postgres"}, c.Database.Type) {
		return errors.Errorf("unsupported database type %q", c.Database.Type)
	}
	if _, err := util.ParseDuration(c.Security.TokenExpiry); err != nil {
		return errors.Wrap(err, "security.token-expiry")
	}
	if c.Security.SessionCleanSpec != "" {
		if _, err := cron.ParseStandard(c.Security.SessionCleanSpec); err != nil {
			return errors.Wrap(err, "security.session-clean-spec")
		}
	}
	if _, err := util.ParseDuration(c.Client.RequestTimeout); err != nil {
		return errors.Wrap(err, "client.request-timeout")
	}

	switch c.Client.Mode {
	case ClientModeEmbedded:
	case ClientModeRemote:
		if strings.TrimSpace(c.Client.BaseURL) == "" {
			return errors.New("client.base-url is required in remote mode")
		}
		if _, err := url.ParseRequestURI(c.Client.BaseURL); err != nil {
			return errors.Wrap(err, "client.base-url")
		}
	default:
		return errors.Errorf("unsupported client mode %q", c.Client.Mode)
	}
	return nil
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	if expiry, err := util.ParseDuration(c.Security.TokenExpiry); err == nil {
		return expiry
	}
	return 7 * 24 * time.Hour
}

// GetRequestTimeout 获取客户端请求超时
func (c *AppConfig) GetRequestTimeout() time.Duration {
	if d, err := util.ParseDuration(c.Client.RequestTimeout); err == nil {
		return d
	}
	return 15 * time.Second
}

// DaoConfig 转换为 dao.DatabaseConfig
func (c *AppConfig) DaoConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		SSLMode:         c.Database.SSLMode,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}
