// Package ledger 本地交易记录账本
//
// 账本是已提交转账的有序记录序列，只追加，唯一的修改是按交易ID更新状态。
// 记录从不删除。每次调用都从持久化存储重新读取，不跨进程缓存。
package ledger

import (
	"context"
	stderrors "errors"
)

// Status 交易状态
type Status string

const (
	// StatusPending 已被节点接受，尚未进入终态
	StatusPending Status = "pending"
	// StatusConfirmed 已打包且执行成功
	StatusConfirmed Status = "confirmed"
	// StatusFailed 已打包但执行回滚
	StatusFailed Status = "failed"
)

// Valid 判断状态值是否合法
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusFailed:
		return true
	}
	return false
}

// IsTerminal 判断是否为终态，终态不再变化
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Record 一笔已提交转账的记录
type Record struct {
	ID        string `json:"id"`        // 网络分配的交易哈希
	Timestamp int64  `json:"timestamp"` // 创建时间（毫秒）
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"` // 整单位十进制字符串
	Status    Status `json:"status"`
}

var (
	// ErrDuplicateID 账本中已存在相同交易ID
	ErrDuplicateID = stderrors.New("duplicate transaction id")
	// ErrInvalidRecord 记录缺少交易ID或状态非法
	ErrInvalidRecord = stderrors.New("invalid record")
	// ErrCorrupted 账本文件内容无法解析，写操作拒绝覆盖
	ErrCorrupted = stderrors.New("ledger file corrupted")
)

// Store 账本存储接口
type Store interface {
	// Append 追加一条记录
	Append(ctx context.Context, rec Record) error

	// UpdateStatus 更新第一条匹配记录的状态
	// 找不到记录或记录已是终态时静默返回，不修改存储
	UpdateStatus(ctx context.Context, id string, status Status) error

	// ReadAll 按写入顺序返回全部记录
	// 无数据或存储不可读时返回空序列
	ReadAll(ctx context.Context) []Record

	// Close 释放底层资源
	Close() error
}

func validateRecord(rec Record) error {
	if rec.ID == "" || !rec.Status.Valid() {
		return ErrInvalidRecord
	}
	return nil
}
