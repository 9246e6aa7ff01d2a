// Package log 提供基于zap的日志实现
// 支持控制台输出、按大小轮转的文件输出以及结构化字段
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	logconfig "github.com/weisyn/wallet/internal/config/log"
	logInterface "github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// Logger 是日志记录器的结构体，实现了log.Logger接口
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
	closer    io.Closer
}

var _ logInterface.Logger = (*Logger)(nil)

// createFileWriter 创建带轮转的文件写入器
func createFileWriter(logPath string, config *logconfig.Config) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.GetMaxSize(),    // megabytes
		MaxBackups: config.GetMaxBackups(), // 最多保留文件数
		MaxAge:     config.GetMaxAge(),     // days
		Compress:   config.IsCompressionEnabled(),
	}, nil
}

// New 根据配置创建日志记录器
//
// 控制台输出写 stderr，stdout 留给命令结果。
// 文件目录无法创建时退化为仅控制台（或无输出），不影响命令执行。
func New(config *logconfig.Config) (*Logger, error) {
	if config == nil {
		config = logconfig.New(nil)
	}
	level := zap.NewAtomicLevelAt(config.GetZapLevel())

	var (
		cores  []zapcore.Core
		closer io.Closer
		errOut error
	)

	if config.IsConsoleEnabled() {
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), zapcore.Lock(os.Stderr), level))
	}

	if path := config.GetFilePath(); path != "" {
		writer, err := createFileWriter(path, config)
		if err != nil {
			errOut = err
		} else {
			closer = writer
			cores = append(cores, zapcore.NewCore(config.CreateFileEncoder(), zapcore.AddSync(writer), level))
		}
	}

	core := zapcore.NewNopCore()
	if len(cores) > 0 {
		core = zapcore.NewTee(cores...)
	}

	var opts []zap.Option
	if config.IsCallerEnabled() {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if config.IsStacktraceEnabled() {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return newLogger(zap.New(core, opts...), closer), errOut
}

// NewNop 创建丢弃所有输出的日志记录器
func NewNop() *Logger {
	return newLogger(zap.NewNop(), nil)
}

func newLogger(z *zap.Logger, closer io.Closer) *Logger {
	return &Logger{zapLogger: z, sugar: z.Sugar(), closer: closer}
}

// toZapFields 将键值对参数转换为zap字段
func toZapFields(args ...interface{}) []zap.Field {
	if len(args)%2 != 0 {
		// 奇数个参数时丢弃最后一个，保证键值对完整
		args = args[:len(args)-1]
	}

	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}

// GetZapLogger 获取原始的zap日志记录器
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zapLogger
}

func (l *Logger) Debug(msg string) {
	l.zapLogger.Debug(msg)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Info(msg string) {
	l.zapLogger.Info(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(msg string) {
	l.zapLogger.Warn(msg)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(msg string) {
	l.zapLogger.Error(msg)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// With 返回带有附加字段的子记录器，子记录器共享底层输出
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	return newLogger(l.zapLogger.With(toZapFields(args...)...), nil)
}

// Sync 同步日志缓冲区
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// Close 刷新并关闭日志文件
func (l *Logger) Close() error {
	_ = l.zapLogger.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
