package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/wallet/client/core/event"
	logimpl "github.com/weisyn/wallet/internal/core/infrastructure/log"
)

func newCollector(t *testing.T, path string) (*Collector, *event.Bus) {
	t.Helper()
	logger := logimpl.NewNop()
	bus := event.NewBus(logger)
	c, err := NewCollector(path, bus, logger)
	require.NoError(t, err)
	return c, bus
}

func TestCollector_CountsEvents(t *testing.T) {
	c, bus := newCollector(t, "")

	bus.Publish(event.TopicTransferSubmitted, event.TransferSubmitted{TxHash: "0x01"})
	bus.Publish(event.TopicTransferSubmitted, event.TransferSubmitted{TxHash: "0x02"})
	bus.Publish(event.TopicTransferFinalized, event.TransferFinalized{TxHash: "0x01", Succeeded: true, BlockNumber: 10, GasUsed: 21000})
	bus.Publish(event.TopicTransferFinalized, event.TransferFinalized{TxHash: "0x02", BlockNumber: 11, GasUsed: 21000})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.submitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.finalized.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.finalized.WithLabelValues("reverted")))
	assert.Equal(t, 42000.0, testutil.ToFloat64(c.gasUsed))
	assert.Equal(t, 11.0, testutil.ToFloat64(c.lastBlock))
}

func TestCollector_FlushWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.prom")
	c, bus := newCollector(t, path)
	bus.Publish(event.TopicTransferSubmitted, event.TransferSubmitted{TxHash: "0x01"})

	require.NoError(t, c.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wallet_transfers_submitted_total 1")

	expected := `
# HELP wallet_transfers_submitted_total Transfers accepted by the node
# TYPE wallet_transfers_submitted_total counter
wallet_transfers_submitted_total 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "wallet_transfers_submitted_total"))
}

func TestCollector_FlushWithoutPath(t *testing.T) {
	c, _ := newCollector(t, "")
	assert.NoError(t, c.Flush())
}
