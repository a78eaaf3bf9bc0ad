package jobs

import (
	"sync"

	"go.uber.org/zap"

	"lyre-server/internal/app/model"
)

// Hub fans out JobEvents to live subscribers. Delivery is best-effort: a
// subscriber that cannot keep up (or is gone) is dropped, never waited on.
// Missed events are not replayed; clients re-derive state via the on-demand
// poll endpoint after reconnecting.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	logger      *zap.Logger
}

// Subscriber is one registered event sink.
type Subscriber struct {
	events chan model.JobEvent
	hub    *Hub
	once   sync.Once
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new sink. The caller must call Remove when done.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		events: make(chan model.JobEvent, 16),
		hub:    h,
	}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	hubSubscribers.Set(float64(count))
	return sub
}

// Broadcast pushes an event to every subscriber. A full or abandoned
// subscriber buffer drops that subscriber instead of blocking the caller.
func (h *Hub) Broadcast(event model.JobEvent) {
	h.mu.Lock()
	var stale []*Subscriber
	for sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			stale = append(stale, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range stale {
		h.logger.Debug("dropping slow event subscriber",
			zap.String("job_id", event.JobID))
		sub.Remove()
	}
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Events is the channel the subscriber reads job events from. It is closed
// by Remove.
func (s *Subscriber) Events() <-chan model.JobEvent {
	return s.events
}

// Remove unregisters the subscriber and closes its channel. Safe to call
// multiple times, from disconnect and cleanup paths alike.
func (s *Subscriber) Remove() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subscribers, s)
		count := len(s.hub.subscribers)
		s.hub.mu.Unlock()

		close(s.events)
		hubSubscribers.Set(float64(count))
	})
}
