package inspector

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/kinetix/internal/core/events/bus"
	"github.com/zeusync/kinetix/internal/core/observability/log"
)

// Message is one frame sent to stream clients.
type Message struct {
	Kind     string    `json:"kind"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Event    *EventMsg `json:"event,omitempty"`
}

type EventMsg struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

const (
	KindSnapshot = "snapshot"
	KindEvent    = "event"
)

type client struct {
	id   uuid.UUID
	send chan []byte
}

// Hub fans published snapshots and events out to stream clients. Each
// client has a bounded queue; frames for a full queue are dropped so the
// simulation never waits for a slow reader.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	latest  *Snapshot
	buffer  int
	dropped uint64
	logger  log.Log
}

func NewHub(buffer int, logger log.Log) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Hub{clients: make(map[uuid.UUID]*client), buffer: buffer, logger: logger}
}

// Publish stores s as the latest snapshot and broadcasts it.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	h.latest = &s
	h.mu.Unlock()
	h.broadcast(Message{Kind: KindSnapshot, Snapshot: &s})
}

// Latest returns the most recently published snapshot.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Snapshot{}, false
	}
	return *h.latest, true
}

// Forward relays every event published on b to the stream clients.
func (h *Hub) Forward(b bus.EventBus) (bus.Subscription, error) {
	return b.Subscribe(bus.Wildcard, func(e bus.Event) error {
		h.broadcast(Message{Kind: KindEvent, Event: &EventMsg{
			Type:      e.Type(),
			Source:    e.Source(),
			Timestamp: e.Timestamp(),
			Data:      e.Data(),
		}})
		return nil
	})
}

func (h *Hub) broadcast(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		h.logger.Warn("encode stream message", log.String("kind", m.Kind), log.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped++
		}
	}
}

func (h *Hub) add() *client {
	c := &client{id: uuid.New(), send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.logger.Debug("inspector client connected", log.String("client", c.id.String()))
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	h.logger.Debug("inspector client disconnected", log.String("client", c.id.String()))
}

// Clients is the number of connected stream clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped counts frames discarded for slow clients.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}
