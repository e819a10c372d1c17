// Package live fans out donation events to connected viewers.
//
// Delivery is best-effort: there is no backlog or replay, subscribers that
// connect after an event never see it, and a subscriber that cannot keep up
// has events dropped rather than blocking the broadcaster.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is a named payload, pre-marshaled so every subscriber shares one
// encoding.
type Event struct {
	Name string
	Data []byte
}

// Hub is the fan-out point for live updates.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new viewer. The returned cancel func must be called
// when the viewer disconnects; it closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast sends the event to every current subscriber. Payloads that fail
// to marshal are logged and dropped; a full subscriber channel drops the
// event for that subscriber only.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("live: marshal event payload", "event", event, "error", err)
		return
	}

	ev := Event{Name: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			slog.Debug("live: dropping event for slow subscriber", "event", event)
		}
	}
}

// SubscriberCount returns the number of connected viewers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
