// Package metrics 转账指标
//
// 订阅事件总线统计转账结果，进程退出时按 node_exporter textfile 格式写出，
// 适合由定时任务调用钱包时接入监控。
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weisyn/wallet/client/core/event"
	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// Collector 转账指标收集器
type Collector struct {
	registry  *prometheus.Registry
	submitted prometheus.Counter
	finalized *prometheus.CounterVec
	gasUsed   prometheus.Counter
	lastBlock prometheus.Gauge

	path   string
	logger log.Logger
}

// NewCollector 创建收集器并订阅转账事件
//
// path 为空时只收集不落盘
func NewCollector(path string, bus *event.Bus, logger log.Logger) (*Collector, error) {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	c := &Collector{
		registry: registry,
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wallet",
			Subsystem: "transfers",
			Name:      "submitted_total",
			Help:      "Transfers accepted by the node",
		}),
		finalized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wallet",
			Subsystem: "transfers",
			Name:      "finalized_total",
			Help:      "Transfers that reached a terminal state",
		}, []string{"outcome"}),
		gasUsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wallet",
			Subsystem: "transfers",
			Name:      "gas_used_total",
			Help:      "Gas consumed by finalized transfers",
		}),
		lastBlock: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "wallet",
			Subsystem: "transfers",
			Name:      "last_block",
			Help:      "Block number of the most recently finalized transfer",
		}),
		path:   path,
		logger: logger,
	}

	if _, err := bus.OnSubmitted(c.onSubmitted); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", event.TopicTransferSubmitted, err)
	}
	if _, err := bus.OnFinalized(c.onFinalized); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", event.TopicTransferFinalized, err)
	}
	return c, nil
}

func (c *Collector) onSubmitted(event.TransferSubmitted) {
	c.submitted.Inc()
}

func (c *Collector) onFinalized(e event.TransferFinalized) {
	outcome := "reverted"
	if e.Succeeded {
		outcome = "succeeded"
	}
	c.finalized.WithLabelValues(outcome).Inc()
	c.gasUsed.Add(float64(e.GasUsed))
	c.lastBlock.Set(float64(e.BlockNumber))
}

// Registry 返回指标注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Flush 写出 textfile，未配置路径时跳过
func (c *Collector) Flush() error {
	if c.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	c.logger.Debugf("指标已写入 %s", c.path)
	return nil
}
