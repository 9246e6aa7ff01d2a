// Package client 钱包客户端入口
//
// 通过 fx 组装配置、日志、节点连接、账本和业务服务，
// 命令层按需取出服务，结束时统一释放资源。
package client

import (
	"context"
	stderrors "errors"

	"go.uber.org/fx"

	"github.com/weisyn/wallet/client/core/config"
	walleterrors "github.com/weisyn/wallet/client/core/errors"
)

// Client 一次命令调用对应的客户端实例
type Client struct {
	app *fx.App
}

// New 组装依赖并启动
//
// targets 为需要取出的服务指针，例如 &oracle（*query.Service）。
// opts 可追加或替换组件（测试中用 fx.Replace 注入节点替身）。
func New(ctx context.Context, cfg *config.Config, targets []interface{}, opts ...fx.Option) (*Client, error) {
	app := fx.New(
		fx.NopLogger,
		Module(cfg, fx.Options(opts...), fx.Populate(targets...)),
	)
	if err := app.Err(); err != nil {
		return nil, unwrapBuildError(err)
	}

	if err := app.Start(ctx); err != nil {
		return nil, unwrapBuildError(err)
	}
	return &Client{app: app}, nil
}

// Close 按生命周期逆序释放资源
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.app == nil {
		return nil
	}
	return c.app.Stop(ctx)
}

// unwrapBuildError 去掉依赖注入框架的包装，保留钱包错误本身
func unwrapBuildError(err error) error {
	var we *walleterrors.WalletError
	if stderrors.As(err, &we) {
		return we
	}
	return err
}
