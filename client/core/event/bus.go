// Package event 转账生命周期事件
//
// 基于 asaskevich/EventBus 的进程内事件总线。编排器发布事件，
// 命令层订阅后渲染进度，发布方不依赖任何订阅者。
package event

import (
	"math/big"

	evbus "github.com/asaskevich/EventBus"

	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// 事件主题
const (
	TopicTransferSubmitted = "transfer:submitted"
	TopicTransferFinalized = "transfer:finalized"
)

// TransferSubmitted 交易已被节点接受
type TransferSubmitted struct {
	TxHash   string
	From     string
	To       string
	Amount   string
	GasPrice *big.Int
}

// TransferFinalized 交易进入终态
type TransferFinalized struct {
	TxHash      string
	Succeeded   bool
	BlockNumber uint64
	GasUsed     uint64
}

// Bus 事件总线
type Bus struct {
	bus    evbus.Bus
	logger log.Logger
}

// NewBus 创建事件总线
func NewBus(logger log.Logger) *Bus {
	return &Bus{bus: evbus.New(), logger: logger}
}

// Subscribe 同步订阅主题，fn 的参数需与发布的事件类型一致
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

// Unsubscribe 取消订阅
func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}

// Publish 发布事件，没有订阅者时直接返回
func (b *Bus) Publish(topic string, payload interface{}) {
	if !b.bus.HasCallback(topic) {
		return
	}
	b.logger.Debugf("发布事件 %s", topic)
	b.bus.Publish(topic, payload)
}

// OnSubmitted 订阅交易提交事件，返回取消函数
func (b *Bus) OnSubmitted(fn func(TransferSubmitted)) (func(), error) {
	if err := b.Subscribe(TopicTransferSubmitted, fn); err != nil {
		return nil, err
	}
	return func() { _ = b.Unsubscribe(TopicTransferSubmitted, fn) }, nil
}

// OnFinalized 订阅交易终态事件，返回取消函数
func (b *Bus) OnFinalized(fn func(TransferFinalized)) (func(), error) {
	if err := b.Subscribe(TopicTransferFinalized, fn); err != nil {
		return nil, err
	}
	return func() { _ = b.Unsubscribe(TopicTransferFinalized, fn) }, nil
}
