package cmd

import (
	"fmt"
	"os"
	"strings"

	internalApp "github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/pkg/logger"
	"github.com/haierkeys/fast-note-client/pkg/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDefault string

// configPath is the --config persistent flag
// configPath 指定要使用的配置文件路径
var configPath string

var rootCmd = &cobra.Command{
	Use:           "fast-note",
	Short:         "Fast Note client and reference gateway",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpTemplate()
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file")
}

func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig picks the config file, creating a default one when none exists
// resolveConfig 查找配置文件，不存在时写入默认配置
func resolveConfig() (string, error) {
	if len(configPath) > 0 {
		return configPath, nil
	}
	for _, f := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if _, err := os.Stat(f); err == nil {
			return f, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config")
	f := "config/config.yaml"
	content := strings.Replace(configDefault, "fast-note-client-Auth-Token", util.GetRandomString(32), 1)

	if err := os.MkdirAll("config", 0o755); err != nil {
		return "", fmt.Errorf("config file auto create error: %w", err)
	}
	if err := os.WriteFile(f, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("config file auto create writing error: %w", err)
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", f))
	return f, nil
}

// loadConfig loads the config and builds the logger it describes
// loadConfig 加载配置并初始化日志器
func loadConfig() (*internalApp.AppConfig, *zap.Logger, error) {
	f, err := resolveConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg, _, err := internalApp.LoadConfig(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	bootstrapLogger.Debug("config resolved", zap.String("path", f), zap.String("mode", cfg.Client.Mode))
	lg, err := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.Log.Production,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, lg, nil
}
