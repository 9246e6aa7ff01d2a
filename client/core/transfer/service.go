// Package transfer 原生代币转账编排
package transfer

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/weisyn/wallet/client/core/amount"
	walleterrors "github.com/weisyn/wallet/client/core/errors"
	"github.com/weisyn/wallet/client/core/event"
	"github.com/weisyn/wallet/client/core/ledger"
	"github.com/weisyn/wallet/client/core/query"
	"github.com/weisyn/wallet/client/core/transport"
	"github.com/weisyn/wallet/client/core/wallet"
	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// ErrConfirmationAborted 等待确认期间被取消，交易可能仍会上链
var ErrConfirmationAborted = stderrors.New("confirmation wait aborted, transaction may still be mined")

// TransferService 转账编排服务
//
// 本身不持有可变状态，每次调用独立完成：
// 校验 → 余额检查 → 提交 → 记账(pending) → 等待终态 → 更新账本
type TransferService struct {
	transport transport.Client
	oracle    *query.Service
	ledger    ledger.Store
	events    *event.Bus
	logger    log.Logger
	now       func() time.Time
}

// NewTransferService 创建转账编排服务，events 可为 nil
func NewTransferService(
	client transport.Client,
	oracle *query.Service,
	store ledger.Store,
	events *event.Bus,
	logger log.Logger,
) *TransferService {
	return &TransferService{
		transport: client,
		oracle:    oracle,
		ledger:    store,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Transfer 执行单笔原生代币转账并等待终态
//
// 提交之前的任何失败都直接返回错误且不会提交交易。
// 提交之后账本写入失败只记录日志，链上结果以节点为准，始终返回交易哈希。
// 交易回滚不算错误，账本状态记为 failed。
func (s *TransferService) Transfer(ctx context.Context, senderKey, recipient, value string) (string, error) {
	// 1. 参数校验
	signer, err := wallet.NewKeySigner(senderKey)
	if err != nil {
		return "", err
	}
	to, err := wallet.ParseAddress(recipient)
	if err != nil {
		return "", err
	}
	amt, err := amount.Parse(value)
	if err != nil {
		return "", walleterrors.Validation("parseAmount", err)
	}
	from := signer.Address()

	// 2. gas 费用
	gasPrice, err := s.oracle.GetGasPrice(ctx)
	if err != nil {
		return "", err
	}
	gasCost := query.GasCost(gasPrice)

	// 3. 余额检查，等于所需金额即可
	balance, err := s.oracle.BalanceWei(ctx, from)
	if err != nil {
		return "", err
	}
	// 节点返回值已由查询服务校验为非负
	have, gas := amount.MustFromWei(balance), amount.MustFromWei(gasCost)
	required := amt.Add(gas)
	if have.LessThan(required) {
		return "", walleterrors.InsufficientFunds("checkBalance", fmt.Errorf(
			"have %s, need %s (amount %s + gas %s)", have, required, amt, gas,
		))
	}

	// 4. 签名并提交
	txHash, err := s.transport.SendTransaction(ctx, &transport.SendTxRequest{
		From:     signer,
		To:       to,
		Value:    amt.Wei(),
		GasLimit: query.FixedGasLimit,
		GasPrice: gasPrice,
	})
	if err != nil {
		return "", walleterrors.Submission("sendTransaction", err)
	}

	logger := s.logger.With("tx", txHash)
	logger.Infof("交易已提交 %s -> %s 金额 %s", from.Hex(), to.Hex(), amt)
	s.publish(event.TopicTransferSubmitted, event.TransferSubmitted{
		TxHash:   txHash,
		From:     from.Hex(),
		To:       to.Hex(),
		Amount:   amt.String(),
		GasPrice: gasPrice,
	})

	// 5. 记账，交易已广播，后续即使被取消也要写入
	persistCtx := context.WithoutCancel(ctx)
	if err := s.ledger.Append(persistCtx, ledger.Record{
		ID:        txHash,
		Timestamp: s.now().UnixMilli(),
		Sender:    from.Hex(),
		Recipient: to.Hex(),
		Amount:    amt.String(),
		Status:    ledger.StatusPending,
	}); err != nil {
		logger.Errorf("%v", walleterrors.Persistence("ledger.Append", err))
	}

	// 6. 等待终态，不设超时
	receipt, err := s.transport.WaitForReceipt(ctx, txHash)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("等待确认被中断，账本记录保持 pending")
			return txHash, walleterrors.Submission("waitForReceipt", fmt.Errorf("%w: %v", ErrConfirmationAborted, err))
		}
		return txHash, walleterrors.Submission("waitForReceipt", err)
	}

	// 7. 更新账本状态
	status := ledger.StatusFailed
	if receipt.Succeeded() {
		status = ledger.StatusConfirmed
	}
	if err := s.ledger.UpdateStatus(persistCtx, txHash, status); err != nil {
		logger.Errorf("%v", walleterrors.Persistence("ledger.UpdateStatus", err))
	}

	logger.Infof("交易进入终态 %s，区块 %d", status, receipt.BlockNumber)
	s.publish(event.TopicTransferFinalized, event.TransferFinalized{
		TxHash:      txHash,
		Succeeded:   receipt.Succeeded(),
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
	})

	// 8. 返回交易哈希
	return txHash, nil
}

func (s *TransferService) publish(topic string, payload interface{}) {
	if s.events != nil {
		s.events.Publish(topic, payload)
	}
}
