// Package mocks 提供 transport.Client 的 testify 替身，供上层测试使用
package mocks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/weisyn/wallet/client/core/transport"
)

// Client transport.Client 的 mock 实现
type Client struct {
	mock.Mock
}

var _ transport.Client = (*Client)(nil)

func (m *Client) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	id, _ := args.Get(0).(*big.Int)
	return id, args.Error(1)
}

func (m *Client) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(uint64)
	return n, args.Error(1)
}

func (m *Client) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	args := m.Called(ctx, address)
	b, _ := args.Get(0).(*big.Int)
	return b, args.Error(1)
}

func (m *Client) GetGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*big.Int)
	return p, args.Error(1)
}

func (m *Client) SendTransaction(ctx context.Context, req *transport.SendTxRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *Client) WaitForReceipt(ctx context.Context, txHash string) (*transport.Receipt, error) {
	args := m.Called(ctx, txHash)
	r, _ := args.Get(0).(*transport.Receipt)
	return r, args.Error(1)
}

func (m *Client) Endpoint() string {
	return "mock://node"
}

func (m *Client) Close() error {
	return nil
}
