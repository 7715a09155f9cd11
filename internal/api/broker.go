package api

import (
	"encoding/json"
	"sync"
)

// StreamEvent is one progress message fanned out to plan stream subscribers.
// Payload stays raw so events survive a broker round trip unchanged.
type StreamEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan StreamEvent]struct{} // planID -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan StreamEvent]struct{}{}}
}

func (b *Broker) Subscribe(planID string) chan StreamEvent {
	ch := make(chan StreamEvent, 8)
	b.mu.Lock()
	if b.subs[planID] == nil {
		b.subs[planID] = map[chan StreamEvent]struct{}{}
	}
	b.subs[planID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(planID string, ch chan StreamEvent) {
	b.mu.Lock()
	if m := b.subs[planID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, planID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(planID string, evt StreamEvent) {
	b.mu.Lock()
	m := b.subs[planID]
	for ch := range m {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
