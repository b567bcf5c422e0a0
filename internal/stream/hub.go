package stream

import (
	"sync"

	"github.com/24thNight/clarify-backend/internal/entity"
	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 64

// Hub fans question stream events out to per-session subscribers. Events are
// buffered per session so a subscriber that connects mid-stream still
// receives everything published before it, in order.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]*topic
	buffer int
	logger *zap.Logger
}

type topic struct {
	history []entity.StreamEvent
	subs    map[chan entity.StreamEvent]struct{}
	closed  bool
}

func NewHub(subscriberBuffer int, logger *zap.Logger) *Hub {
	if subscriberBuffer <= 0 {
		subscriberBuffer = defaultSubscriberBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		topics: make(map[string]*topic),
		buffer: subscriberBuffer,
		logger: logger,
	}
}

// Open registers a topic for a session. Publishing to or subscribing on an
// unopened session fails with ErrSessionNotFound.
func (h *Hub) Open(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.topics[sessionID]; ok {
		return
	}
	h.topics[sessionID] = &topic{
		subs: make(map[chan entity.StreamEvent]struct{}),
	}
}

// Publish appends the event to the session history and delivers it to all
// live subscribers. A subscriber that cannot keep up is dropped rather than
// blocking the pump.
func (h *Hub) Publish(sessionID string, ev entity.StreamEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[sessionID]
	if !ok {
		return entity.ErrSessionNotFound
	}
	if t.closed {
		return entity.ErrStreamClosed
	}

	t.history = append(t.history, ev)
	for ch := range t.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("dropping slow stream subscriber",
				zap.String("session_id", sessionID),
			)
			delete(t.subs, ch)
			close(ch)
		}
	}
	return nil
}

// Subscribe returns a channel that replays the session history and then
// receives live events, plus a cancel function the subscriber must call when
// it goes away. The channel is closed when the stream is closed.
func (h *Hub) Subscribe(sessionID string) (<-chan entity.StreamEvent, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[sessionID]
	if !ok {
		return nil, nil, entity.ErrSessionNotFound
	}

	ch := make(chan entity.StreamEvent, len(t.history)+h.buffer)
	for _, ev := range t.history {
		ch <- ev
	}

	if t.closed {
		close(ch)
		return ch, func() {}, nil
	}

	t.subs[ch] = struct{}{}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, live := t.subs[ch]; live {
			delete(t.subs, ch)
			close(ch)
		}
	}
	return ch, cancel, nil
}

// Close marks the session stream as finished and closes all subscriber
// channels. The history is retained so late subscribers can still replay it.
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[sessionID]
	if !ok || t.closed {
		return
	}
	t.closed = true
	for ch := range t.subs {
		delete(t.subs, ch)
		close(ch)
	}
}

// Remove tears the topic down entirely; used when a session is abandoned.
func (h *Hub) Remove(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[sessionID]
	if !ok {
		return
	}
	for ch := range t.subs {
		delete(t.subs, ch)
		close(ch)
	}
	delete(h.topics, sessionID)
}
