package bridge

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind identifies a provider event.
type EventKind int

const (
	EventAccountsChanged EventKind = iota
	EventChainChanged
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventAccountsChanged:
		return "accountsChanged"
	case EventChainChanged:
		return "chainChanged"
	default:
		return "disconnect"
	}
}

// Event is a provider notification.
type Event struct {
	Kind     EventKind
	Accounts []common.Address // EventAccountsChanged
	ChainID  *big.Int         // EventChainChanged
	Err      error            // EventDisconnected
}

// Subscription is a scoped stream of provider events. The producing
// goroutine stops and Events is closed once Unsubscribe returns.
type Subscription struct {
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
}

// StartSubscription runs produce in its own goroutine until it returns or the
// subscription is released. emit reports false once the consumer is gone.
func StartSubscription(parent context.Context, produce func(ctx context.Context, emit func(Event) bool)) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	s := &Subscription{
		events: make(chan Event),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		defer close(s.events)
		produce(ctx, func(ev Event) bool {
			select {
			case s.events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return s
}

// Events returns the event channel.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Unsubscribe releases the subscription and waits for the producer to exit.
// It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.cancel()
	<-s.done
}

func sameAccounts(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
