package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/weisyn/wallet/client/core/ledger"
)

var historyColumns = []string{"id", "timestamp", "sender", "recipient", "amount", "status"}

// newHistoryCmd 查看本地账本
func (c *cli) newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "查看转账记录",
		Long: `按提交顺序列出本地账本中的转账记录。

账本只记录本机发起的转账，不连接节点。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var store ledger.Store
			wc, err := c.openClient(cmd.Context(), &store)
			if err != nil {
				return err
			}
			defer c.closeClient(wc)

			records := store.ReadAll(cmd.Context())
			if len(records) == 0 && !c.formatter.IsStructured() {
				c.formatter.PrintInfo("暂无转账记录")
			}
			return c.formatter.PrintRows(historyColumns, historyRows(records, c.formatter.IsStructured()))
		},
	}
}

// historyRows 结构化输出保留毫秒时间戳，表格和文本输出转为本地时间
func historyRows(records []ledger.Record, structured bool) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		var ts interface{} = r.Timestamp
		if !structured {
			ts = time.UnixMilli(r.Timestamp).Format(time.DateTime)
		}
		rows = append(rows, map[string]interface{}{
			"id":        r.ID,
			"timestamp": ts,
			"sender":    r.Sender,
			"recipient": r.Recipient,
			"amount":    r.Amount,
			"status":    string(r.Status),
		})
	}
	return rows
}
