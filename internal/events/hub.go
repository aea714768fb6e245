// Package events delivers committed transactions to connected group
// members in real time. The Hub fans events out to websocket subscribers
// of the same group; an optional AMQP publisher mirrors every event to an
// exchange so other instances (or offline processors) can consume them.
//
// Delivery is best-effort: a subscriber whose send fails is dropped and
// must re-fetch history on reconnect. Events for one group carry the
// ledger's commit sequence and are written out in that order.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mmynk/splitchat/internal/metrics"
	"github.com/mmynk/splitchat/internal/models"
)

// EventType distinguishes the two points a transaction is pushed at.
type EventType string

const (
	// TypeMessage announces a freshly recorded transaction (no details yet).
	TypeMessage EventType = "transaction.recorded"

	// TypeExpense announces that details were attached to a transaction.
	TypeExpense EventType = "expense.attached"
)

// Event is the payload delivered to subscribers and mirrored to AMQP.
type Event struct {
	Type        EventType           `json:"type"`
	GroupID     string              `json:"group_id"`
	Seq         int64               `json:"seq"`
	Transaction *models.Transaction `json:"transaction"`
}

// Subscription is one live websocket attached to a group's event stream.
type Subscription struct {
	hub     *Hub
	groupID string
	conn    *websocket.Conn

	// writeMu serializes writes; gorilla/websocket allows one writer at a
	// time per connection. It also guards lastSeen.
	writeMu  sync.Mutex
	lastSeen time.Time
}

// Touch marks the subscription alive. The read loop calls it on every
// pong and message.
func (s *Subscription) Touch() {
	s.writeMu.Lock()
	s.lastSeen = time.Now()
	s.writeMu.Unlock()
}

func (s *Subscription) seen() time.Time {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.lastSeen
}

// Close drops the subscription and closes the connection.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub tracks the websocket subscribers of each group.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{} // groupID -> subscriptions
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a connection for a group's events.
func (h *Hub) Subscribe(groupID string, conn *websocket.Conn) *Subscription {
	s := &Subscription{hub: h, groupID: groupID, conn: conn, lastSeen: time.Now()}

	h.mu.Lock()
	if _, ok := h.subs[groupID]; !ok {
		h.subs[groupID] = make(map[*Subscription]struct{})
	}
	h.subs[groupID][s] = struct{}{}
	total := len(h.subs[groupID])
	h.mu.Unlock()

	slog.Debug("Subscriber connected", "group_id", groupID, "subscribers", total)
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	if conns, ok := h.subs[s.groupID]; ok {
		delete(conns, s)
		if len(conns) == 0 {
			delete(h.subs, s.groupID)
		}
	}
	h.mu.Unlock()

	_ = s.conn.Close()
	slog.Debug("Subscriber disconnected", "group_id", s.groupID)
}

// Publish fans an event out to every subscriber of its group. Subscribers
// whose write fails are dropped; nobody blocks on them.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	conns := make([]*Subscription, 0, len(h.subs[ev.GroupID]))
	for s := range h.subs[ev.GroupID] {
		conns = append(conns, s)
	}
	h.mu.RUnlock()

	for _, s := range conns {
		s.writeMu.Lock()
		err := s.conn.WriteJSON(ev)
		s.writeMu.Unlock()
		if err != nil {
			slog.Warn("Dropping subscriber after failed send",
				"group_id", ev.GroupID, "error", err)
			metrics.SubscribersDropped.Inc()
			h.remove(s)
		}
	}
	metrics.EventsPublished.Inc()
}

// Heartbeat pings all connections at the given interval and drops those
// that have not answered within two intervals. Run it in its own
// goroutine; it returns when the done channel closes.
func (h *Hub) Heartbeat(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		var stale []*Subscription
		for _, conns := range h.subs {
			for s := range conns {
				if time.Since(s.seen()) > 2*interval {
					stale = append(stale, s)
					continue
				}
				s.writeMu.Lock()
				_ = s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
				s.writeMu.Unlock()
			}
		}
		h.mu.RUnlock()

		for _, s := range stale {
			metrics.SubscribersDropped.Inc()
			h.remove(s)
		}
	}
}
