package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weisyn/wallet/client/core/amount"
	walleterrors "github.com/weisyn/wallet/client/core/errors"
	"github.com/weisyn/wallet/client/core/event"
	"github.com/weisyn/wallet/client/core/ledger"
	"github.com/weisyn/wallet/client/core/output"
	"github.com/weisyn/wallet/client/core/transfer"
	"github.com/weisyn/wallet/client/core/wallet"
)

// newTransferCmd 发送转账
func (c *cli) newTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <private-key|-> <to> <amount>",
		Short: "发送原生代币转账",
		Long: `从私钥对应的地址向目标地址转账，并等待交易进入终态。

私钥参数为 "-" 时从终端读取（不回显），避免私钥留在 shell 历史中。
金额为整币单位的十进制数，例如 1.5。
发送前检查余额是否足够支付金额和 gas 费用 (gas 单价 × 21000)。

示例：
  wes-wallet transfer - 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 0.01`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if key == "-" {
				var err error
				if key, err = c.readKey(); err != nil {
					return err
				}
			}

			// 全部参数校验通过后才连接节点
			if _, err := wallet.ParsePrivateKey(key); err != nil {
				return err
			}
			to, err := wallet.ParseAddress(args[1])
			if err != nil {
				return err
			}
			amt, err := amount.Parse(args[2])
			if err != nil {
				return walleterrors.Validation("parseAmount", err)
			}

			var (
				svc *transfer.TransferService
				bus *event.Bus
			)
			wc, err := c.openClient(cmd.Context(), &svc, &bus)
			if err != nil {
				return err
			}
			defer c.closeClient(wc)

			// 先订阅再启动进度提示，订阅失败时不留下运行中的动画
			var (
				progress output.Progress
				status   = ledger.StatusPending
				block    uint64
			)

			cancelSubmitted, err := bus.OnSubmitted(func(e event.TransferSubmitted) {
				progress.Update(fmt.Sprintf("交易已提交 %s，等待确认...", e.TxHash))
			})
			if err != nil {
				return err
			}
			defer cancelSubmitted()

			cancelFinalized, err := bus.OnFinalized(func(e event.TransferFinalized) {
				status = ledger.StatusFailed
				if e.Succeeded {
					status = ledger.StatusConfirmed
				}
				block = e.BlockNumber
			})
			if err != nil {
				return err
			}
			defer cancelFinalized()

			progress = c.formatter.StartProgress("正在提交交易...")
			txHash, err := svc.Transfer(cmd.Context(), key, to.Hex(), args[2])
			if err != nil {
				progress.Fail("转账未完成")
				if txHash != "" {
					c.formatter.PrintWarning(fmt.Sprintf("交易 %s 已提交，可稍后通过 history 或区块浏览器查看结果", txHash))
				}
				return err
			}

			if status == ledger.StatusConfirmed {
				progress.Success(fmt.Sprintf("交易已确认，区块 %d", block))
			} else {
				progress.Fail(fmt.Sprintf("交易执行失败（已回滚），区块 %d", block))
			}

			return c.formatter.Print(map[string]interface{}{
				"tx_hash": txHash,
				"to":      to.Hex(),
				"amount":  amt.String(),
				"status":  string(status),
				"block":   block,
			})
		},
	}
}

// promptKey 从标准输入读取私钥，终端下不回显
func (c *cli) promptKey() (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", walleterrors.Validation("readPrivateKey", err)
		}
		return strings.TrimSpace(line), nil
	}

	_, _ = fmt.Fprint(c.stderr, "私钥: ")
	raw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(c.stderr)
	if err != nil {
		return "", walleterrors.Validation("readPrivateKey", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
