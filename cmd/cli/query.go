package main

import (
	"github.com/spf13/cobra"

	"github.com/weisyn/wallet/client/core/query"
	"github.com/weisyn/wallet/client/core/wallet"
)

// newCheckCmd 查询余额
func (c *cli) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <address>",
		Short: "查询地址余额",
		Long: `查询地址当前可用余额，以整币单位显示。

示例：
  wes-wallet check 0x70997970C51812dc3A010C7d01b50e0d17dc79C8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// 地址格式错误不连接节点
			addr, err := wallet.ParseAddress(args[0])
			if err != nil {
				return err
			}

			var oracle *query.Service
			wc, err := c.openClient(cmd.Context(), &oracle)
			if err != nil {
				return err
			}
			defer c.closeClient(wc)

			balance, err := oracle.GetBalance(cmd.Context(), addr.Hex())
			if err != nil {
				return err
			}

			return c.formatter.Print(map[string]interface{}{
				"address": addr.Hex(),
				"balance": balance,
				"network": c.cfg.Network,
			})
		},
	}
}

// newInfoCmd 查询网络信息
func (c *cli) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "查询网络信息",
		Long:  "查询当前连接节点的网络名称、链ID和最新区块高度",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var oracle *query.Service
			wc, err := c.openClient(cmd.Context(), &oracle)
			if err != nil {
				return err
			}
			defer c.closeClient(wc)

			info, err := oracle.NetworkInfo(cmd.Context())
			if err != nil {
				return err
			}

			return c.formatter.Print(map[string]interface{}{
				"network":      info.Network,
				"chain_id":     info.ChainID,
				"latest_block": info.BlockNumber,
				"endpoint":     info.Endpoint,
			})
		},
	}
}

// newGasCmd 查询 gas 价格
func (c *cli) newGasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gas",
		Short: "查询 gas 价格和转账费用",
		Long:  "查询节点建议的 gas 单价，以及固定 gas 上限 (21000) 下一笔普通转账的费用",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var oracle *query.Service
			wc, err := c.openClient(cmd.Context(), &oracle)
			if err != nil {
				return err
			}
			defer c.closeClient(wc)

			quote, err := oracle.TransferCost(cmd.Context())
			if err != nil {
				return err
			}

			return c.formatter.Print(map[string]interface{}{
				"gas_price":      quote.GasPrice,
				"gas_price_gwei": quote.GasPriceGwei,
				"gas_limit":      quote.GasLimit,
				"transfer_cost":  quote.Cost,
			})
		},
	}
}
