package client

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/weisyn/wallet/client/core/config"
	walleterrors "github.com/weisyn/wallet/client/core/errors"
	"github.com/weisyn/wallet/client/core/event"
	"github.com/weisyn/wallet/client/core/ledger"
	"github.com/weisyn/wallet/client/core/metrics"
	"github.com/weisyn/wallet/client/core/query"
	"github.com/weisyn/wallet/client/core/transfer"
	"github.com/weisyn/wallet/client/core/transport"
	logconfig "github.com/weisyn/wallet/internal/config/log"
	logimpl "github.com/weisyn/wallet/internal/core/infrastructure/log"
	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// Module 钱包客户端依赖装配
//
// 服务创建顺序：
//   - 配置、日志（基础设施）
//   - 节点连接、账本、事件总线（资源）
//   - 查询服务、转账编排（业务）
//   - 转账指标（始终创建，订阅事件总线）
//
// 构造是惰性的，只有被请求的服务及其依赖才会创建。
// extra 在同一模块作用域内生效，fx.Replace 替换的组件对 extra 中的 fx.Populate 可见。
func Module(cfg *config.Config, extra ...fx.Option) fx.Option {
	if cfg.Log == nil {
		cfg.Log = logconfig.DefaultOptions("")
	}
	return fx.Module("wallet",
		fx.Supply(cfg, cfg.Log),
		logimpl.Module(),
		fx.Provide(
			newTransport,
			newLedger,
			event.NewBus,
			newQueryService,
			transfer.NewTransferService,
			newMetrics,
		),
		fx.Invoke(func(*metrics.Collector) {}),
		fx.Options(extra...),
	)
}

const defaultDialTimeout = 30 * time.Second

// newTransport 连接节点，停止时关闭连接
func newTransport(lc fx.Lifecycle, cfg *config.Config, logger log.Logger) (transport.Client, error) {
	timeout := cfg.RequestTimeout.Std()
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := transport.Dial(ctx, transport.ClientConfig{
		Endpoint:     cfg.RPCURL,
		PollInterval: cfg.PollInterval.Std(),
	}, logimpl.NewModuleLogger(logger, "transport"))
	if err != nil {
		return nil, walleterrors.Query("dial", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

// newLedger 打开账本
//
// 打开失败不阻止命令执行：返回占位账本，写入时由编排器记录持久化错误
func newLedger(lc fx.Lifecycle, cfg *config.Config, logger log.Logger) ledger.Store {
	ledgerLogger := logimpl.NewModuleLogger(logger, "ledger")

	store, err := ledger.Open(context.Background(), cfg.Ledger, ledgerLogger)
	if err != nil {
		ledgerLogger.Errorf("%v", walleterrors.Persistence("ledger.Open", err))
		return ledger.Unavailable(err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})
	return store
}

func newQueryService(client transport.Client, cfg *config.Config, logger log.Logger) *query.Service {
	return query.NewService(client, query.Options{
		Network:        cfg.Network,
		RequestTimeout: cfg.RequestTimeout.Std(),
	}, logimpl.NewModuleLogger(logger, "query"))
}

// newMetrics 订阅转账事件，停止时写出指标文件
func newMetrics(lc fx.Lifecycle, cfg *config.Config, bus *event.Bus, logger log.Logger) (*metrics.Collector, error) {
	collector, err := metrics.NewCollector(cfg.MetricsFile, bus, logimpl.NewModuleLogger(logger, "metrics"))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return collector.Flush()
		},
	})
	return collector, nil
}
