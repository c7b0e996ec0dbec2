package stream

import (
	"sync"

	"fanline/internal/domain"
)

// Broker fans committed notifications out to live in-process subscribers
// (one per open websocket). Publishing never blocks: a subscriber that
// cannot keep up has the notification dropped, since the persisted row is
// the source of truth and the stream is only a live hint.
type Broker struct {
	mu   sync.RWMutex
	subs map[int64]map[chan domain.Notification]struct{}
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int64]map[chan domain.Notification]struct{}),
	}
}

// Subscribe registers a subscriber for the recipient's notifications.
// The returned cancel func must be called to release the subscription.
func (b *Broker) Subscribe(recipientID int64) (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, 16)

	b.mu.Lock()
	if b.subs[recipientID] == nil {
		b.subs[recipientID] = make(map[chan domain.Notification]struct{})
	}
	b.subs[recipientID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[recipientID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, recipientID)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the notification to every live subscriber of its
// recipient.
func (b *Broker) Publish(n domain.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[n.RecipientID] {
		select {
		case ch <- n:
		default:
			// subscriber too slow, drop
		}
	}
}
