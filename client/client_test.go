package client

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/weisyn/wallet/client/core/config"
	walleterrors "github.com/weisyn/wallet/client/core/errors"
	"github.com/weisyn/wallet/client/core/event"
	"github.com/weisyn/wallet/client/core/ledger"
	"github.com/weisyn/wallet/client/core/query"
	"github.com/weisyn/wallet/client/core/transfer"
	"github.com/weisyn/wallet/client/core/transport"
	"github.com/weisyn/wallet/client/core/transport/mocks"
	logconfig "github.com/weisyn/wallet/internal/config/log"
	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.RPCURL = "http://127.0.0.1:1"
	cfg.Ledger = ledger.Config{Backend: backend, Path: filepath.Join(dir, "ledger")}
	cfg.Log = logconfig.DefaultOptions(dir)
	return cfg
}

func replaceTransport(c transport.Client) fx.Option {
	return fx.Replace(fx.Annotate(c, fx.As(new(transport.Client))))
}

func TestModule_ProvidesServices(t *testing.T) {
	var (
		oracle    *query.Service
		transfers *transfer.TransferService
		store     ledger.Store
		bus       *event.Bus
		logger    log.Logger
	)

	app := fxtest.New(t,
		fx.NopLogger,
		Module(testConfig(t, ledger.BackendJSON),
			replaceTransport(new(mocks.Client)),
			fx.Populate(&oracle, &transfers, &store, &bus, &logger),
		),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.NotNil(t, oracle)
	assert.NotNil(t, transfers)
	assert.IsType(t, &ledger.FileStore{}, store)
	assert.NotNil(t, bus)
	assert.NotNil(t, logger)
}

func TestModule_LedgerBackends(t *testing.T) {
	for _, backend := range []string{ledger.BackendBadger, ledger.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			var store ledger.Store
			app := fxtest.New(t,
				fx.NopLogger,
				Module(testConfig(t, backend), fx.Populate(&store)),
			)
			app.RequireStart()

			ctx := context.Background()
			require.NoError(t, store.Append(ctx, ledger.Record{ID: "0x01", Status: ledger.StatusPending}))
			assert.Len(t, store.ReadAll(ctx), 1)

			// 停止时关闭底层数据库
			app.RequireStop()
		})
	}
}

func TestNew_UsesReplacedTransport(t *testing.T) {
	node := new(mocks.Client)
	node.On("GetBalance", mock.Anything, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")).
		Return(big.NewInt(2_000_000_000_000_000_000), nil)

	var oracle *query.Service
	c, err := New(context.Background(), testConfig(t, ledger.BackendJSON),
		[]interface{}{&oracle}, replaceTransport(node))
	require.NoError(t, err)
	defer c.Close(context.Background())

	balance, err := oracle.GetBalance(context.Background(), "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.NoError(t, err)
	assert.Equal(t, "2", balance)
}

func TestNew_DialFailureIsQueryError(t *testing.T) {
	cfg := testConfig(t, ledger.BackendJSON)
	cfg.RPCURL = "ftp://node"

	var oracle *query.Service
	_, err := New(context.Background(), cfg, []interface{}{&oracle})
	require.Error(t, err)
	assert.Equal(t, walleterrors.QueryError, walleterrors.TypeOf(err))
}

func TestNew_UnopenableLedgerDoesNotFail(t *testing.T) {
	cfg := testConfig(t, ledger.BackendSQLite)
	// 父路径是普通文件，目录无法创建
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	cfg.Ledger.Path = filepath.Join(blocker, "ledger.db")

	var store ledger.Store
	c, err := New(context.Background(), cfg, []interface{}{&store}, replaceTransport(new(mocks.Client)))
	require.NoError(t, err)
	defer c.Close(context.Background())

	assert.Empty(t, store.ReadAll(context.Background()))
	assert.Error(t, store.Append(context.Background(), ledger.Record{ID: "0x01", Status: ledger.StatusPending}))
}

func TestNew_MetricsFlushedOnClose(t *testing.T) {
	const (
		key    = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
		from   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
		to     = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
		txHash = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
	)
	node := new(mocks.Client)
	node.On("GetGasPrice", mock.Anything).Return(big.NewInt(1), nil)
	node.On("GetBalance", mock.Anything, common.HexToAddress(from)).Return(big.NewInt(2_000_000_000_000_000_000), nil)
	node.On("SendTransaction", mock.Anything, mock.Anything).Return(txHash, nil)
	node.On("WaitForReceipt", mock.Anything, txHash).
		Return(&transport.Receipt{TxHash: txHash, BlockNumber: 7, Status: transport.ReceiptSuccess, GasUsed: 21000}, nil)

	cfg := testConfig(t, ledger.BackendJSON)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "wallet.prom")

	var svc *transfer.TransferService
	c, err := New(context.Background(), cfg, []interface{}{&svc}, replaceTransport(node))
	require.NoError(t, err)

	id, err := svc.Transfer(context.Background(), key, to, "1")
	require.NoError(t, err)
	assert.Equal(t, txHash, id)
	require.NoError(t, c.Close(context.Background()))

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wallet_transfers_submitted_total 1")
	assert.Contains(t, string(data), `wallet_transfers_finalized_total{outcome="succeeded"} 1`)
}
