// Package errors 提供钱包客户端的统一错误分类
//
// 所有向上传播的错误都包装为 WalletError，携带错误类型、操作名和原始错误，
// 命令分发层据此输出统一的失败信息并设置退出码。
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType 错误类型
type ErrorType string

const (
	// ValidationError 地址、私钥或金额格式错误（发生在任何远程调用之前）
	ValidationError ErrorType = "validation"
	// QueryError 远程节点只读查询失败
	QueryError ErrorType = "query"
	// InsufficientFundsError 余额不足以支付金额与 gas
	InsufficientFundsError ErrorType = "insufficient_funds"
	// SubmissionError 节点拒绝交易提交
	SubmissionError ErrorType = "submission"
	// PersistenceError 本地账本读写失败（只记录日志，不向上传播）
	PersistenceError ErrorType = "persistence"
)

// WalletError 钱包错误
type WalletError struct {
	Type  ErrorType // 错误类型
	Op    string    // 操作名
	Cause error     // 原始错误
}

// Error 实现error接口，格式为 "<op>: <cause>"
func (e *WalletError) Error() string {
	if e.Cause == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap 返回原始错误
func (e *WalletError) Unwrap() error {
	return e.Cause
}

// New 创建指定类型的钱包错误
func New(t ErrorType, op string, cause error) *WalletError {
	return &WalletError{Type: t, Op: op, Cause: cause}
}

// Newf 使用格式化消息创建钱包错误
func Newf(t ErrorType, op string, format string, args ...interface{}) *WalletError {
	return &WalletError{Type: t, Op: op, Cause: fmt.Errorf(format, args...)}
}

// Validation 创建验证错误
func Validation(op string, cause error) *WalletError {
	return New(ValidationError, op, cause)
}

// Query 创建查询错误
func Query(op string, cause error) *WalletError {
	return New(QueryError, op, cause)
}

// InsufficientFunds 创建余额不足错误
func InsufficientFunds(op string, cause error) *WalletError {
	return New(InsufficientFundsError, op, cause)
}

// Submission 创建提交错误
func Submission(op string, cause error) *WalletError {
	return New(SubmissionError, op, cause)
}

// Persistence 创建持久化错误
func Persistence(op string, cause error) *WalletError {
	return New(PersistenceError, op, cause)
}

// TypeOf 返回错误链上第一个 WalletError 的类型，没有则返回空串
func TypeOf(err error) ErrorType {
	var we *WalletError
	if stderrors.As(err, &we) {
		return we.Type
	}
	return ""
}

// IsType 判断错误链上是否存在指定类型的 WalletError
func IsType(err error, t ErrorType) bool {
	for err != nil {
		var we *WalletError
		if !stderrors.As(err, &we) {
			return false
		}
		if we.Type == t {
			return true
		}
		err = we.Cause
	}
	return false
}
