package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/weisyn/wallet/client/core/transport"
	"github.com/weisyn/wallet/client/core/transport/mocks"
)

const (
	senderKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	sender    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	recipient = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	txHash    = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
)

var (
	gwei     = big.NewInt(1_000_000_000)
	oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

type harness struct {
	node       *mocks.Client
	configPath string
	ledgerPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		node:       new(mocks.Client),
		configPath: filepath.Join(dir, "config.json"),
		ledgerPath: filepath.Join(dir, "transactions.json"),
	}

	cfg := fmt.Sprintf(`{
  "rpc_url": "http://127.0.0.1:1",
  "network": "testnet",
  "ledger": {"backend": "json", "path": %q},
  "log": {"level": "info", "file_path": %q}
}`, h.ledgerPath, filepath.Join(dir, "wallet.log"))
	require.NoError(t, os.WriteFile(h.configPath, []byte(cfg), 0600))
	return h
}

// run 执行一次命令，返回退出码和两路输出
func (h *harness) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	c := newCLI(&stdout, &stderr)
	c.readKey = func() (string, error) { return senderKey, nil }
	c.options = []fx.Option{fx.Replace(fx.Annotate(h.node, fx.As(new(transport.Client))))}

	code := c.execute(context.Background(), append([]string{"--config", h.configPath}, args...))
	return code, stdout.String(), stderr.String()
}

func (h *harness) expectTransfer(balance *big.Int, status transport.ReceiptStatus) {
	h.node.On("GetGasPrice", mock.Anything).Return(gwei, nil)
	h.node.On("GetBalance", mock.Anything, common.HexToAddress(sender)).Return(balance, nil)
	h.node.On("SendTransaction", mock.Anything, mock.Anything).Return(txHash, nil)
	h.node.On("WaitForReceipt", mock.Anything, txHash).Return(&transport.Receipt{
		TxHash:      txHash,
		BlockNumber: 42,
		Status:      status,
		GasUsed:     21000,
	}, nil)
}

func decodeJSON(t *testing.T, s string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(s), v), s)
}

func TestCheck_PrintsBalance(t *testing.T) {
	h := newHarness(t)
	h.node.On("GetBalance", mock.Anything, common.HexToAddress(recipient)).
		Return(new(big.Int).Mul(big.NewInt(15), new(big.Int).Div(oneEther, big.NewInt(10))), nil)

	code, stdout, stderr := h.run("check", recipient, "-o", "json")
	require.Equal(t, 0, code, stderr)

	var out map[string]interface{}
	decodeJSON(t, stdout, &out)
	assert.Equal(t, "1.5", out["balance"])
	assert.Equal(t, recipient, out["address"])
	assert.Equal(t, "testnet", out["network"])
}

func TestCheck_MalformedAddressNeverReachesNode(t *testing.T) {
	h := newHarness(t)

	code, stdout, stderr := h.run("check", "0xZZ70997970C51812dc3A010C7d01b50e0d17dc79")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: parseAddress")
	h.node.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything)
}

func TestTransfer_ConfirmedThenHistory(t *testing.T) {
	h := newHarness(t)
	h.expectTransfer(oneEther, transport.ReceiptSuccess)

	code, stdout, stderr := h.run("transfer", senderKey, recipient, "0.5", "-o", "json")
	require.Equal(t, 0, code, stderr)

	var out map[string]interface{}
	decodeJSON(t, stdout, &out)
	assert.Equal(t, txHash, out["tx_hash"])
	assert.Equal(t, "confirmed", out["status"])
	assert.Equal(t, "0.5", out["amount"])

	code, stdout, stderr = h.run("history", "-o", "json")
	require.Equal(t, 0, code, stderr)

	var rows []map[string]interface{}
	decodeJSON(t, stdout, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, txHash, rows[0]["id"])
	assert.Equal(t, sender, rows[0]["sender"])
	assert.Equal(t, recipient, rows[0]["recipient"])
	assert.Equal(t, "0.5", rows[0]["amount"])
	assert.Equal(t, "confirmed", rows[0]["status"])
}

func TestTransfer_RevertIsNotAnError(t *testing.T) {
	h := newHarness(t)
	h.expectTransfer(oneEther, transport.ReceiptRevert)

	code, stdout, stderr := h.run("transfer", senderKey, recipient, "0.5", "-o", "json")
	require.Equal(t, 0, code, stderr)

	var out map[string]interface{}
	decodeJSON(t, stdout, &out)
	assert.Equal(t, "failed", out["status"])
}

func TestTransfer_KeyFromPrompt(t *testing.T) {
	h := newHarness(t)
	h.expectTransfer(oneEther, transport.ReceiptSuccess)

	code, _, stderr := h.run("transfer", "-", recipient, "0.1", "-o", "json")
	require.Equal(t, 0, code, stderr)
	h.node.AssertCalled(t, "GetBalance", mock.Anything, common.HexToAddress(sender))
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	h := newHarness(t)
	h.node.On("GetGasPrice", mock.Anything).Return(gwei, nil)
	h.node.On("GetBalance", mock.Anything, common.HexToAddress(sender)).Return(big.NewInt(1), nil)

	code, stdout, stderr := h.run("transfer", senderKey, recipient, "0.5")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: checkBalance")
	h.node.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)

	_, err := os.Stat(h.ledgerPath)
	assert.True(t, os.IsNotExist(err))
}

func TestTransfer_FailureConcludesProgress(t *testing.T) {
	h := newHarness(t)
	h.node.On("GetGasPrice", mock.Anything).Return(gwei, nil)
	h.node.On("GetBalance", mock.Anything, common.HexToAddress(sender)).Return(big.NewInt(1), nil)

	code, stdout, stderr := h.run("transfer", senderKey, recipient, "0.5", "-o", "json")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "❌ 转账未完成")
	assert.Contains(t, stderr, "Error: checkBalance")
}

func TestTransfer_ValidationBeforeRemoteCalls(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"短私钥", []string{"0x1234", recipient, "1"}, "parsePrivateKey"},
		{"非法地址", []string{senderKey, "0xZZ", "1"}, "parseAddress"},
		{"负数金额", []string{senderKey, recipient, "-1"}, "parseAmount"},
		{"科学计数法", []string{senderKey, recipient, "1e18"}, "parseAmount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			code, _, stderr := h.run(append([]string{"transfer", "--"}, tt.args...)...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.want)
			assert.Empty(t, h.node.Calls)
		})
	}
}

func TestHistory_EmptyLedger(t *testing.T) {
	h := newHarness(t)

	code, stdout, stderr := h.run("history", "-o", "json")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "[]\n", stdout)

	code, stdout, stderr = h.run("history")
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "暂无转账记录")
}

func TestGas_Text(t *testing.T) {
	h := newHarness(t)
	h.node.On("GetGasPrice", mock.Anything).Return(gwei, nil)

	code, stdout, stderr := h.run("gas", "-o", "text")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "gas_limit: 21000")
	assert.Contains(t, stdout, "transfer_cost: 0.000021")
}

func TestInfo_JSON(t *testing.T) {
	h := newHarness(t)
	h.node.On("ChainID", mock.Anything).Return(big.NewInt(11155111), nil)
	h.node.On("BlockNumber", mock.Anything).Return(uint64(123), nil)

	code, stdout, stderr := h.run("info", "-o", "json")
	require.Equal(t, 0, code, stderr)

	var out map[string]interface{}
	decodeJSON(t, stdout, &out)
	assert.Equal(t, "testnet", out["network"])
	assert.EqualValues(t, 11155111, out["chain_id"])
	assert.EqualValues(t, 123, out["latest_block"])
	assert.Equal(t, "mock://node", out["endpoint"])
}

func TestQueryFailureExitsNonZero(t *testing.T) {
	h := newHarness(t)
	h.node.On("GetGasPrice", mock.Anything).Return(nil, assert.AnError)

	code, stdout, stderr := h.run("gas")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: GetGasPrice")
}

func TestRoot_HelpAndBadFlags(t *testing.T) {
	h := newHarness(t)

	code, stdout, _ := h.run()
	assert.Equal(t, 0, code)
	for _, name := range []string{"check", "transfer", "history", "info", "gas"} {
		assert.Contains(t, stdout, name)
	}

	code, _, stderr := h.run("gas", "-o", "yaml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown output format")

	code, _, stderr = h.run("nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
}
