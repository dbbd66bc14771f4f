package display

import (
	"context"
	"strings"
	"sync"

	"pos-till/internal/domain"
)

const DefaultSubscriberBuffer = 16

// Hub fans display messages out to in-process subscribers, one stream per till.
type Hub struct {
	mu               sync.RWMutex
	streams          map[string]map[uint64]chan domain.DisplayMessage
	nextID           uint64
	subscriberBuffer int
}

type Subscription struct {
	hub  *Hub
	till string
	id   uint64
	ch   chan domain.DisplayMessage
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]map[uint64]chan domain.DisplayMessage),
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish delivers msg to every subscriber of till without blocking.
// A subscriber whose buffer is full misses the message.
func (h *Hub) Publish(_ context.Context, till string, msg domain.DisplayMessage) {
	if h == nil {
		return
	}
	till = strings.TrimSpace(till)

	h.mu.RLock()
	subs := make([]chan domain.DisplayMessage, 0, len(h.streams[till]))
	for _, ch := range h.streams[till] {
		subs = append(subs, ch)
	}
	h.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) Subscribe(till string) *Subscription {
	till = strings.TrimSpace(till)

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.streams[till]
	if !ok {
		subs = make(map[uint64]chan domain.DisplayMessage)
		h.streams[till] = subs
	}
	id := h.nextID
	h.nextID++
	ch := make(chan domain.DisplayMessage, h.subscriberBuffer)
	subs[id] = ch

	return &Subscription{hub: h, till: till, id: id, ch: ch}
}

// Subscribers returns the number of live subscriptions for till.
func (h *Hub) Subscribers(till string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[till])
}

func (h *Hub) unsubscribe(till string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.streams[till]
	delete(subs, id)
	if len(subs) == 0 {
		delete(h.streams, till)
	}
}

func (s *Subscription) Messages() <-chan domain.DisplayMessage {
	return s.ch
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s.till, s.id)
	})
}
