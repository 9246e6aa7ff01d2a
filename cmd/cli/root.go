package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/weisyn/wallet/client"
	"github.com/weisyn/wallet/client/core/config"
	"github.com/weisyn/wallet/client/core/output"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath   string // 配置文件路径
	OutputFormat string // 输出格式
	LedgerPath   string // 账本路径
	Silent       bool   // 静默模式
	Verbose      bool   // 详细模式
}

// cli 一次命令调用的运行状态
type cli struct {
	flags     GlobalFlags
	cfg       *config.Config
	formatter *output.Formatter

	stdout io.Writer
	stderr io.Writer

	// readKey 读取 "-" 方式传入的私钥
	readKey func() (string, error)
	// options 追加到依赖装配中的选项（测试用来替换节点）
	options []fx.Option
}

func newCLI(stdout, stderr io.Writer) *cli {
	c := &cli{stdout: stdout, stderr: stderr}
	c.readKey = c.promptKey
	return c
}

// newRootCmd 根命令
func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wes-wallet",
		Short: "测试网钱包命令行客户端",
		Long: `wes-wallet - 测试网原生代币钱包

通过节点 JSON-RPC 查询余额和 gas 价格，发送转账并等待确认，
每笔已提交的交易都记录在本地账本中。

配置文件默认位于 ~/.wes-wallet/config.json，首次运行时自动创建，
WALLET_* 环境变量可覆盖其中的字段。`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().StringVar(&c.flags.ConfigPath, "config", "", "配置文件路径 (默认: ~/.wes-wallet/config.json)")
	root.PersistentFlags().StringVarP(&c.flags.OutputFormat, "output", "o", string(output.FormatTable), "输出格式: json|pretty|table|text")
	root.PersistentFlags().StringVar(&c.flags.LedgerPath, "ledger", "", "账本路径 (覆盖配置)")
	root.PersistentFlags().BoolVar(&c.flags.Silent, "silent", false, "静默模式 (不输出结果)")
	root.PersistentFlags().BoolVarP(&c.flags.Verbose, "verbose", "v", false, "详细输出 (调试日志打印到终端)")

	root.AddCommand(
		c.newCheckCmd(),
		c.newTransferCmd(),
		c.newHistoryCmd(),
		c.newInfoCmd(),
		c.newGasCmd(),
	)
	return root
}

// setup 加载配置并初始化输出
func (c *cli) setup() error {
	format, err := output.ParseFormat(c.flags.OutputFormat)
	if err != nil {
		return err
	}
	c.formatter = output.NewFormatter(format, c.stdout)
	c.formatter.SetLogWriter(c.stderr)
	c.formatter.SetSilent(c.flags.Silent)

	cfg, err := config.Load(c.flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("初始化配置: %w", err)
	}
	if c.flags.LedgerPath != "" {
		cfg.Ledger.Path = c.flags.LedgerPath
	}
	if c.flags.Verbose {
		cfg.Log.ToConsole = true
		cfg.Log.Level = "debug"
	}
	c.cfg = cfg
	return nil
}

// openClient 组装客户端并取出所需服务
func (c *cli) openClient(ctx context.Context, targets ...interface{}) (*client.Client, error) {
	return client.New(ctx, c.cfg, targets, c.options...)
}

// closeClient 释放客户端，失败只提示
func (c *cli) closeClient(wc *client.Client) {
	if err := wc.Close(context.Background()); err != nil {
		_, _ = fmt.Fprintf(c.stderr, "关闭客户端失败: %v\n", err)
	}
}

// printError 统一的失败输出
func (c *cli) printError(err error) {
	if c.formatter != nil {
		c.formatter.PrintError(err)
		return
	}
	_, _ = fmt.Fprintf(c.stderr, "Error: %v\n", err)
}

// execute 执行命令并返回退出码
func (c *cli) execute(ctx context.Context, args []string) int {
	root := c.newRootCmd()
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		c.printError(err)
		return 1
	}
	return 0
}

// Execute 执行根命令
func Execute(ctx context.Context) int {
	return newCLI(os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
}
