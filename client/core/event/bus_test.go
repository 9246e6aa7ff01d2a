package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logimpl "github.com/weisyn/wallet/internal/core/infrastructure/log"
)

func TestBus_TypedSubscriptions(t *testing.T) {
	bus := NewBus(logimpl.NewNop())

	var submitted []TransferSubmitted
	var finalized []TransferFinalized
	cancelSubmitted, err := bus.OnSubmitted(func(e TransferSubmitted) { submitted = append(submitted, e) })
	require.NoError(t, err)
	_, err = bus.OnFinalized(func(e TransferFinalized) { finalized = append(finalized, e) })
	require.NoError(t, err)

	bus.Publish(TopicTransferSubmitted, TransferSubmitted{TxHash: "0x01"})
	bus.Publish(TopicTransferFinalized, TransferFinalized{TxHash: "0x01", Succeeded: true})

	require.Len(t, submitted, 1)
	assert.Equal(t, "0x01", submitted[0].TxHash)
	require.Len(t, finalized, 1)
	assert.True(t, finalized[0].Succeeded)

	cancelSubmitted()
	bus.Publish(TopicTransferSubmitted, TransferSubmitted{TxHash: "0x02"})
	assert.Len(t, submitted, 1)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(logimpl.NewNop())
	assert.NotPanics(t, func() {
		bus.Publish(TopicTransferFinalized, TransferFinalized{})
	})
}

func TestBus_SubscribeRejectsNonFunc(t *testing.T) {
	bus := NewBus(logimpl.NewNop())
	assert.Error(t, bus.Subscribe(TopicTransferSubmitted, "not a func"))
}
