// Package query 余额与 gas 查询服务
//
// 只读查询，直接代理到远程节点，无副作用。
package query

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/wallet/client/core/amount"
	walleterrors "github.com/weisyn/wallet/client/core/errors"
	"github.com/weisyn/wallet/client/core/transport"
	"github.com/weisyn/wallet/client/core/wallet"
	"github.com/weisyn/wallet/configs"
	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// FixedGasLimit 普通转账的固定 gas 上限
const FixedGasLimit uint64 = 21000

// Options 查询服务配置
type Options struct {
	Network        string        // 网络名称，仅用于展示
	RequestTimeout time.Duration // 单次查询超时，0 表示不限
}

// GasQuote 转账费用报价
type GasQuote struct {
	GasPrice     *big.Int `json:"gas_price"`      // 单价（最小单位）
	GasPriceGwei string   `json:"gas_price_gwei"` // 单价（gwei）
	GasLimit     uint64   `json:"gas_limit"`
	CostWei      *big.Int `json:"cost_wei"` // gasPrice * gasLimit
	Cost         string   `json:"cost"`     // 整单位
}

// NetworkInfo 网络信息
type NetworkInfo struct {
	Network     string   `json:"network"`
	ChainID     *big.Int `json:"chain_id"`
	BlockNumber uint64   `json:"block_number"`
	Endpoint    string   `json:"endpoint"`
}

// Service 余额与 gas 查询服务
type Service struct {
	client  transport.Client
	options Options
	logger  log.Logger
}

// NewService 创建查询服务
func NewService(client transport.Client, options Options, logger log.Logger) *Service {
	return &Service{
		client:  client,
		options: options,
		logger:  logger,
	}
}

// GasCost 计算固定 gas 上限下的费用
func GasCost(gasPrice *big.Int) *big.Int {
	return new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(FixedGasLimit))
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.options.RequestTimeout)
}

// GetBalance 查询地址余额，返回整单位十进制字符串
func (s *Service) GetBalance(ctx context.Context, address string) (string, error) {
	addr, err := wallet.ParseAddress(address)
	if err != nil {
		return "", walleterrors.Query("GetBalance", err)
	}

	wei, err := s.BalanceWei(ctx, addr)
	if err != nil {
		return "", err
	}
	return amount.MustFromWei(wei).String(), nil
}

// BalanceWei 查询地址余额（最小单位）
func (s *Service) BalanceWei(ctx context.Context, addr common.Address) (*big.Int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	wei, err := s.client.GetBalance(ctx, addr)
	if err != nil {
		return nil, walleterrors.Query("GetBalance", err)
	}
	if wei == nil || wei.Sign() < 0 {
		return nil, walleterrors.Newf(walleterrors.QueryError, "GetBalance", "node returned invalid balance %v", wei)
	}

	s.logger.Debugf("余额查询 %s = %s wei", addr.Hex(), wei)
	return wei, nil
}

// GetGasPrice 查询建议 gas 单价（最小单位）
func (s *Service) GetGasPrice(ctx context.Context) (*big.Int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	price, err := s.client.GetGasPrice(ctx)
	if err != nil {
		return nil, walleterrors.Query("GetGasPrice", err)
	}
	if price == nil || price.Sign() < 0 {
		return nil, walleterrors.Newf(walleterrors.QueryError, "GetGasPrice", "node returned invalid gas price %v", price)
	}
	return price, nil
}

// TransferCost 查询当前 gas 单价下一笔普通转账的费用
func (s *Service) TransferCost(ctx context.Context) (*GasQuote, error) {
	price, err := s.GetGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	cost := GasCost(price)
	return &GasQuote{
		GasPrice:     price,
		GasPriceGwei: amount.Gwei(price),
		GasLimit:     FixedGasLimit,
		CostWei:      cost,
		Cost:         amount.MustFromWei(cost).String(),
	}, nil
}

// NetworkInfo 查询网络信息
func (s *Service) NetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	chainID, err := s.client.ChainID(ctx)
	if err != nil {
		return nil, walleterrors.Query("ChainID", err)
	}
	height, err := s.client.BlockNumber(ctx)
	if err != nil {
		return nil, walleterrors.Query("BlockNumber", err)
	}

	return &NetworkInfo{
		Network:     s.networkName(chainID),
		ChainID:     chainID,
		BlockNumber: height,
		Endpoint:    s.client.Endpoint(),
	}, nil
}

func (s *Service) networkName(chainID *big.Int) string {
	if s.options.Network != "" {
		return s.options.Network
	}
	if name, ok := configs.ChainName(chainID); ok {
		return name
	}
	return fmt.Sprintf("chain-%v", chainID)
}
