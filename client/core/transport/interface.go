// Package transport provides transport interface definitions for client operations.
package transport

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/wallet/client/core/wallet"
)

// Client 统一传输客户端接口 - CLI与节点通信的唯一通道
// 所有网络调用必须经由此接口，上层对具体协议无感知
type Client interface {
	// ===== 链信息 =====

	// ChainID 获取链ID
	ChainID(ctx context.Context) (*big.Int, error)

	// BlockNumber 获取最新区块高度
	BlockNumber(ctx context.Context) (uint64, error)

	// ===== 状态查询 =====

	// GetBalance 获取账户余额（最小单位）
	GetBalance(ctx context.Context, address common.Address) (*big.Int, error)

	// GetGasPrice 获取建议 gas 单价（最小单位）
	GetGasPrice(ctx context.Context) (*big.Int, error)

	// ===== 交易提交与确认 =====

	// SendTransaction 签名并提交转账，节点接受进入交易池后立即返回交易哈希
	SendTransaction(ctx context.Context, req *SendTxRequest) (string, error)

	// WaitForReceipt 阻塞直到交易进入终态（打包成功或回滚）
	WaitForReceipt(ctx context.Context, txHash string) (*Receipt, error)

	// Endpoint 返回节点地址
	Endpoint() string

	// Close 关闭客户端连接
	Close() error
}

// SendTxRequest 转账提交参数
type SendTxRequest struct {
	From     wallet.Signer  // 发送方签名身份
	To       common.Address // 接收方
	Value    *big.Int       // 转账金额（最小单位）
	GasLimit uint64         // gas 上限
	GasPrice *big.Int       // gas 单价（最小单位）
}

// ReceiptStatus 交易终态
type ReceiptStatus string

const (
	// ReceiptSuccess 交易已打包且执行成功
	ReceiptSuccess ReceiptStatus = "success"
	// ReceiptRevert 交易已打包但执行回滚
	ReceiptRevert ReceiptStatus = "revert"
)

// Receipt 交易回执
type Receipt struct {
	TxHash      string        `json:"tx_hash"`
	BlockHash   string        `json:"block_hash"`
	BlockNumber uint64        `json:"block_number"`
	Status      ReceiptStatus `json:"status"`
	GasUsed     uint64        `json:"gas_used"`
}

// Succeeded 判断交易是否执行成功
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == ReceiptSuccess
}

// ClientConfig 客户端配置
type ClientConfig struct {
	Endpoint     string        `json:"endpoint"`      // JSON-RPC / WebSocket 地址
	PollInterval time.Duration `json:"poll_interval"` // 回执轮询间隔
}
