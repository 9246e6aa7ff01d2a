package transport

import (
	"context"
	stderrors "errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

const (
	defaultPollInterval = 2 * time.Second
)

// ethBackend go-ethereum 客户端中本包用到的方法子集
type ethBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// EthClient 基于 go-ethereum ethclient 的传输客户端
type EthClient struct {
	backend      ethBackend
	endpoint     string
	pollInterval time.Duration
	logger       log.Logger
}

var _ Client = (*EthClient)(nil)

// Dial 连接节点并创建客户端
func Dial(ctx context.Context, cfg ClientConfig, logger log.Logger) (*EthClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("no endpoint configured")
	}

	backend, err := ethclient.DialContext(ctx, cfg.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "DialContext")
	}

	return newEthClient(backend, cfg, logger), nil
}

func newEthClient(backend ethBackend, cfg ClientConfig, logger log.Logger) *EthClient {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &EthClient{
		backend:      backend,
		endpoint:     cfg.Endpoint,
		pollInterval: cfg.PollInterval,
		logger:       logger,
	}
}

// ===== 接口实现 =====

func (c *EthClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.backend.ChainID(ctx)
	return id, errors.Wrap(err, "ChainID")
}

func (c *EthClient) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.backend.BlockNumber(ctx)
	return n, errors.Wrap(err, "BlockNumber")
}

func (c *EthClient) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := c.backend.BalanceAt(ctx, address, nil)
	return balance, errors.Wrap(err, "BalanceAt")
}

func (c *EthClient) GetGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.backend.SuggestGasPrice(ctx)
	return price, errors.Wrap(err, "SuggestGasPrice")
}

// SendTransaction 构建 legacy 交易、签名并广播
func (c *EthClient) SendTransaction(ctx context.Context, req *SendTxRequest) (string, error) {
	if req == nil || req.From == nil {
		return "", errors.New("request without signer")
	}

	from := req.From.Address()
	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return "", errors.Wrap(err, "PendingNonceAt")
	}

	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return "", errors.Wrap(err, "ChainID")
	}

	to := req.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: req.GasPrice,
		Gas:      req.GasLimit,
		To:       &to,
		Value:    req.Value,
	})

	signed, err := req.From.SignTx(tx, chainID)
	if err != nil {
		return "", errors.Wrap(err, "SignTx")
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return "", errors.Wrap(err, "SendTransaction")
	}

	c.logger.With("tx", signed.Hash().Hex(), "nonce", nonce, "from", from.Hex()).Debug("交易已广播")
	return signed.Hash().Hex(), nil
}

// WaitForReceipt 轮询回执直到交易进入终态
//
// 没有超时，只有 ctx 取消才会提前返回。
// 回执尚不存在或查询临时失败时继续等待。
func (c *EthClient) WaitForReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	hash := common.HexToHash(txHash)

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		receipt, err := c.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			return convertReceipt(receipt), nil
		case err == nil, stderrors.Is(err, ethereum.NotFound):
			c.logger.Debugf("等待交易 %s 打包", txHash)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			c.logger.Warnf("查询交易回执失败，稍后重试: %v", err)
		}
		timer.Reset(c.pollInterval)
	}
}

func (c *EthClient) Endpoint() string {
	return c.endpoint
}

func (c *EthClient) Close() error {
	c.backend.Close()
	return nil
}

// convertReceipt 将 go-ethereum 回执转换为传输层回执
func convertReceipt(r *types.Receipt) *Receipt {
	status := ReceiptRevert
	if r.Status == types.ReceiptStatusSuccessful {
		status = ReceiptSuccess
	}

	var blockNumber uint64
	if r.BlockNumber != nil {
		blockNumber = r.BlockNumber.Uint64()
	}

	return &Receipt{
		TxHash:      r.TxHash.Hex(),
		BlockHash:   r.BlockHash.Hex(),
		BlockNumber: blockNumber,
		Status:      status,
		GasUsed:     r.GasUsed,
	}
}
