package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Outcome classifies how one dispatched event ended.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeGated      Outcome = "gated"
	OutcomeRegistered Outcome = "registered"
	OutcomeValidation Outcome = "validation_error"
	OutcomeCapability Outcome = "capability_error"
	OutcomeDelivery   Outcome = "delivery_error"
)

// Record is one processed-event entry in the operator activity feed.
type Record struct {
	ID       string        `json:"id"`
	Time     time.Time     `json:"time"`
	UserID   string        `json:"user_id"`
	Intent   string        `json:"intent"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration_ns"`
}

// ringSize bounds the in-memory feed. The feed is ephemeral by design.
const ringSize = 100

// Hub keeps the recent dispatch records and streams new ones to websocket
// subscribers.
type Hub struct {
	log *zap.Logger

	mu      sync.Mutex
	records []Record
	subs    map[*websocket.Conn]bool
}

// NewHub creates an empty activity hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[*websocket.Conn]bool),
	}
}

// Publish appends a record to the feed and pushes it to all subscribers.
// Dead connections are dropped.
func (h *Hub) Publish(rec Record) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, rec)
	if len(h.records) > ringSize {
		h.records = h.records[len(h.records)-ringSize:]
	}

	for conn := range h.subs {
		if err := conn.WriteJSON(rec); err != nil {
			h.log.Debug("activity subscriber dropped", zap.Error(err))
			conn.Close()
			delete(h.subs, conn)
		}
	}
}

// Recent returns the feed newest-first.
func (h *Hub) Recent() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Record, len(h.records))
	for i, rec := range h.records {
		out[len(h.records)-1-i] = rec
	}
	return out
}

// Stats summarizes the feed per outcome.
func (h *Hub) Stats() map[Outcome]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := make(map[Outcome]int)
	for _, rec := range h.records {
		stats[rec.Outcome]++
	}
	return stats
}

// subscribe registers a websocket connection for live records.
func (h *Hub) subscribe(conn *websocket.Conn) {
	h.mu.Lock()
	h.subs[conn] = true
	h.mu.Unlock()
}

// unsubscribe removes a websocket connection.
func (h *Hub) unsubscribe(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.subs, conn)
	h.mu.Unlock()
}
