package events

import (
	"encoding/json"
	"net/http"
	"sync"

	"motionpitch/internal/infra"
)

const subscriberBuffer = 16

// Hub broadcasts pipeline events to connected browsers over Server-Sent
// Events. Slow subscribers drop messages instead of blocking Emit.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	logger infra.Logger
}

// NewHub builds an empty hub.
func NewHub(logger infra.Logger) *Hub {
	return &Hub{
		subs:   make(map[chan []byte]struct{}),
		logger: logger,
	}
}

// Emit broadcasts the event to all current subscribers.
func (h *Hub) Emit(event string, payload map[string]any) {
	data, err := json.Marshal(map[string]any{"event": event, "payload": payload})
	if err != nil {
		h.logger.Warn().Err(err).Str("event", event).Msg("events: marshal failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			// Subscriber is not keeping up; drop this message for it.
		}
	}
}

// Subscribe registers a new subscriber channel. The returned cancel function
// must be called when the subscriber disconnects.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// ServeHTTP streams events to the client as text/event-stream.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := h.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			if _, err := w.Write([]byte("event: log\n")); err != nil {
				return
			}
			if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
