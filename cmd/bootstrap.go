package cmd

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bootstrapLogger 启动阶段日志器
// 配置文件加载之前（查找、自动生成配置、切换工作目录）使用
var bootstrapLogger = newBootstrapLogger(os.Stderr, bootstrapLevel())

// bootstrapLevel FAST_NOTE_DEBUG 或 DEBUG 任一非空时输出 debug 日志
func bootstrapLevel() zapcore.Level {
	if os.Getenv("FAST_NOTE_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func newBootstrapLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, zap.AddCaller())
}
