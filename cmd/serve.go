package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
}

func init() {
	serveEnv := new(serveFlags)

	var serveCommand = &cobra.Command{
		Use:     "serve [-c config_file] [-d working_dir] [-p port]",
		Aliases: []string{"run"},
		Short:   "Run the reference gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(serveEnv.dir) > 0 {
				if err := os.Chdir(serveEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
					return err
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", serveEnv.dir))
			}

			// 先确定配置文件，供 watcher 监听
			f, err := resolveConfig()
			if err != nil {
				return err
			}
			configPath = f

			s, err := NewServer(serveEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return err
			}
			s.Start()

			w := watcher.New()

			// Set MaxEvents to 1 to receive at most 1 event in each listening cycle
			// 将 SetMaxEvents 设置为 1，以便在每个监听周期中至多接收 1 个事件
			w.SetMaxEvents(1)

			// Only notify write events.
			// 只通知写入事件。
			w.FilterOps(watcher.Write)

			if err := w.Add(configPath); err != nil {
				s.logger.Error("config watcher file error", zap.Error(err))
			}
			go func() {
				if err := w.Start(time.Second * 5); err != nil {
					s.logger.Error("config watcher start error", zap.Error(err))
				}
			}()
			defer w.Close()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case event := <-w.Event:
					s.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
					if err := s.Stop(); err != nil {
						s.logger.Error("Shutdown completed with error", zap.Error(err))
					}

					// Re-initialize server
					// 重新初始化 server
					next, err := NewServer(serveEnv)
					if err != nil {
						bootstrapLogger.Error("service restart err", zap.Error(err))
						return err
					}
					s = next
					s.Start()

				case err := <-w.Error:
					s.logger.Error("config watcher error", zap.Error(err))

				case err := <-s.Done():
					// 某个服务异常退出（例如端口被占用）
					s.logger.Error("service stopped", zap.Error(err))
					return err

				case <-quit:
					s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
					if err := s.Stop(); err != nil {
						s.logger.Error("Shutdown completed with error", zap.Error(err))
						return err
					}
					s.logger.Info("Service has been shut down gracefully.")
					_ = s.logger.Sync()
					return nil
				}
			}
		},
	}

	rootCmd.AddCommand(serveCommand)
	fs := serveCommand.Flags()
	fs.StringVarP(&serveEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&serveEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&serveEnv.runMode, "mode", "m", "", "run mode")
}
