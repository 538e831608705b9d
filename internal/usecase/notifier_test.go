package usecase

import (
	"testing"

	"impact-ledger/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestNotifierRegistrationOrder(t *testing.T) {
	n := NewNotifier(logger.New())

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		n.Subscribe(ChannelBalanceUpdated, func(Event) { order = append(order, i) })
	}

	n.Publish(Event{Channel: ChannelBalanceUpdated})

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestNotifierChannelIsolation(t *testing.T) {
	n := NewNotifier(logger.New())

	balanceCalls := 0
	stateCalls := 0
	n.Subscribe(ChannelBalanceUpdated, func(Event) { balanceCalls++ })
	n.Subscribe(ChannelStateChanged, func(Event) { stateCalls++ })

	n.Publish(Event{Channel: ChannelBalanceUpdated})

	assert.Equal(t, 1, balanceCalls)
	assert.Equal(t, 0, stateCalls)
}

func TestNotifierPanicIsolation(t *testing.T) {
	n := NewNotifier(logger.New())

	called := false
	n.Subscribe(ChannelStateChanged, func(Event) { panic("boom") })
	n.Subscribe(ChannelStateChanged, func(Event) { called = true })

	assert.NotPanics(t, func() {
		n.Publish(Event{Channel: ChannelStateChanged})
	})
	assert.True(t, called, "subscribers after the panicking one still run")
}

func TestNotifierUnsubscribe(t *testing.T) {
	n := NewNotifier(logger.New())

	calls := 0
	sub := n.Subscribe(ChannelRewardClaimed, func(Event) { calls++ })
	keep := 0
	n.Subscribe(ChannelRewardClaimed, func(Event) { keep++ })

	n.Publish(Event{Channel: ChannelRewardClaimed})
	n.Unsubscribe(sub)
	n.Publish(Event{Channel: ChannelRewardClaimed})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, keep)

	// Unsubscribing twice or passing nil is harmless.
	n.Unsubscribe(sub)
	n.Unsubscribe(nil)
}
