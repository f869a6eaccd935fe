// Package realtime pushes complaint events to connected websocket sessions.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// Sink accepts events for fan-out to sessions.
type Sink interface {
	Deliver(event events.Event)
}

// Frame is the JSON envelope written to clients.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks sessions and room memberships on this instance.
type Hub struct {
	logger     *zap.Logger
	metrics    *observability.Metrics
	sendBuffer int

	mu       sync.RWMutex
	sessions map[*Session]struct{}
	rooms    map[string]map[*Session]struct{}
	closed   bool
}

// NewHub constructs an empty hub. sendBuffer bounds the frames queued per
// session before new frames are dropped.
func NewHub(logger *zap.Logger, metrics *observability.Metrics, sendBuffer int) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &Hub{
		logger:     logger,
		metrics:    metrics,
		sendBuffer: sendBuffer,
		sessions:   make(map[*Session]struct{}),
		rooms:      make(map[string]map[*Session]struct{}),
	}
}

// Deliver encodes the event once and queues it for every targeted session
// without blocking. Broadcast events reach everyone; room events reach only
// that room's members.
func (h *Hub) Deliver(event events.Event) {
	data, err := json.Marshal(Frame{Event: string(event.Type), Data: event.Payload})
	if err != nil {
		h.logger.Error("encode realtime frame", zap.String("event", string(event.Type)), zap.Error(err))
		return
	}

	h.mu.RLock()
	var targets []*Session
	if event.Broadcast() {
		targets = make([]*Session, 0, len(h.sessions))
		for s := range h.sessions {
			targets = append(targets, s)
		}
	} else {
		members := h.rooms[event.Room]
		targets = make([]*Session, 0, len(members))
		for s := range members {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if !s.enqueue(data) {
			h.metrics.DeliveryDropped()
			h.logger.Warn("realtime frame dropped",
				zap.String("event", string(event.Type)),
				zap.String("session", s.id),
				zap.String("user_id", s.principal.ID))
		}
	}
}

func (h *Hub) register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s] = struct{}{}
	h.metrics.SessionOpened()
	h.logger.Debug("realtime session connected", zap.String("session", s.id), zap.String("user_id", s.principal.ID))
	return true
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)
	for room := range s.rooms {
		h.removeMember(room, s)
	}
	s.rooms = nil
	h.metrics.SessionClosed()
	h.logger.Debug("realtime session disconnected", zap.String("session", s.id))
}

func (h *Hub) join(s *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	s.rooms[room] = struct{}{}
	h.logger.Debug("realtime session joined room", zap.String("session", s.id), zap.String("room", room))
}

func (h *Hub) leave(s *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeMember(room, s)
	delete(s.rooms, room)
}

// removeMember must be called with h.mu held.
func (h *Hub) removeMember(room string, s *Session) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, s)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// RoomSize returns the number of sessions in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every session and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
