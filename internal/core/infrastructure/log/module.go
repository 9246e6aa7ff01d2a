package log

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	logconfig "github.com/weisyn/wallet/internal/config/log"
	logInterface "github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// ModuleParams 定义日志模块的依赖参数
type ModuleParams struct {
	fx.In

	Options   *logconfig.LogOptions `optional:"true"` // 日志配置，缺省时不写文件
	Lifecycle fx.Lifecycle
}

// ModuleOutput 定义日志模块的输出结构
type ModuleOutput struct {
	fx.Out

	Logger    logInterface.Logger // 日志记录器接口
	ZapLogger *zap.Logger         // zap.Logger 具体类型
}

// Module 返回日志模块
func Module() fx.Option {
	return fx.Module("log",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供日志服务
//
// 每次进程调用生成一个 session 标识，同一次命令的日志都带上它。
// 日志文件不可用时继续运行，只是不落盘。
func ProvideServices(params ModuleParams) ModuleOutput {
	base, err := New(logconfig.New(params.Options))
	session := base.With("session", uuid.NewString())
	if err != nil {
		session.Warnf("日志文件不可用: %v", err)
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return base.Close()
		},
	})

	return ModuleOutput{
		Logger:    session,
		ZapLogger: session.GetZapLogger(),
	}
}

// NewModuleLogger 创建带 module 字段的 logger
func NewModuleLogger(baseLogger logInterface.Logger, module string) logInterface.Logger {
	if baseLogger == nil {
		return nil
	}
	return baseLogger.With("module", module)
}
