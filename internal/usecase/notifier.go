package usecase

import (
	"sync"

	"impact-ledger/internal/entity"
	"impact-ledger/pkg/logger"
)

const (
	ChannelStateChanged     = "state_changed"
	ChannelBalanceUpdated   = "balance_updated"
	ChannelRewardClaimed    = "reward_claimed"
	ChannelContributionMade = "contribution_made"
)

// Event is a state-change notification published after a committed ledger
// operation. Payload fields are filled per channel and are defensive copies.
type Event struct {
	Channel      string               `json:"channel"`
	AccountID    string               `json:"account_id"`
	State        *entity.Snapshot     `json:"state,omitempty"`
	Balance      *entity.Balance      `json:"balance,omitempty"`
	Reward       *entity.Reward       `json:"reward,omitempty"`
	Contribution *entity.Contribution `json:"contribution,omitempty"`
	Transaction  *entity.Transaction  `json:"transaction,omitempty"`
}

type Handler func(Event)

type Subscription struct {
	id      int
	channel string
}

type subscriber struct {
	id      int
	handler Handler
}

// Notifier delivers events synchronously, in registration order. A panicking
// subscriber is isolated so the remaining subscribers are still notified and
// the already-committed operation is unaffected.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscriber
	logger *logger.Logger
}

func NewNotifier(logger *logger.Logger) *Notifier {
	return &Notifier{
		subs:   make(map[string][]subscriber),
		logger: logger,
	}
}

func (n *Notifier) Subscribe(channel string, handler Handler) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.subs[channel] = append(n.subs[channel], subscriber{id: n.nextID, handler: handler})
	return &Subscription{id: n.nextID, channel: channel}
}

func (n *Notifier) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	subs := n.subs[sub.channel]
	for i := range subs {
		if subs[i].id == sub.id {
			n.subs[sub.channel] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (n *Notifier) Publish(event Event) {
	n.mu.Lock()
	subs := make([]subscriber, len(n.subs[event.Channel]))
	copy(subs, n.subs[event.Channel])
	n.mu.Unlock()

	for _, s := range subs {
		n.notify(s, event)
	}
}

func (n *Notifier) notify(s subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Subscriber panicked on channel %s: %v", event.Channel, r)
		}
	}()
	s.handler(event)
}
