package messaging

import (
	"context"
	"log/slog"
	"sync"

	"agora/internal/shared/events"
)

// Hub is the in-process broadcast channel. Delivery is fire-and-forget and
// at-most-once: a subscriber whose buffer is full has the event dropped
// rather than blocking the publisher, and disconnected subscribers get no
// catch-up. Clients resynchronize by pulling full state on (re)connect.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int]chan events.Envelope
	nextID      int
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[int]chan events.Envelope),
		logger:      logger,
	}
}

func (h *Hub) Publish(ctx context.Context, event events.Envelope) error {
	h.mu.RLock()
	subs := make([]chan events.Envelope, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				"event", "hub_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"event_type", event.EventType,
				"event_id", event.EventID,
			)
		}
	}
	return nil
}

// Subscribe registers a buffered tap on the hub. The returned cancel func
// detaches the subscriber. The channel is left open so an in-flight Publish
// can never hit a closed channel; detached channels are simply collected.
func (h *Hub) Subscribe(buffer int) (<-chan events.Envelope, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan events.Envelope, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, id)
		h.mu.Unlock()
	}
	return ch, cancel
}
