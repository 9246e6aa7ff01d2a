package log

import (
	"go.uber.org/zap/zapcore"
)

// 日志配置默认值
// CLI 每次调用只执行一条命令，日志量小，默认写文件、不写控制台
const (
	defaultLogLevel = "info"

	// defaultToConsole 默认关闭控制台输出，避免污染命令输出；--verbose 时打开
	defaultToConsole = false

	// defaultFileName 默认日志文件名，位于数据目录下
	defaultFileName = "wallet.log"

	// === 日志轮转配置 ===

	defaultMaxSize    = 10 // MB
	defaultMaxBackups = 3
	defaultMaxAge     = 14 // days
	defaultCompress   = true

	// === 调试配置 ===

	defaultEnableCaller     = true
	defaultEnableStacktrace = false
)

// 默认的日志级别映射
var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}
