package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 << 10
	guardTimeout   = 5 * time.Second
)

// Client frame types.
const (
	msgJoinRoom  = "join-room"
	msgLeaveRoom = "leave-room"
	msgPing      = "ping"
)

type clientMessage struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// Session is one websocket connection. The writer goroutine is the only
// code that writes to or closes conn.
type Session struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	principal *auth.Principal
	guard     RoomGuard
	logger    *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc

	// rooms is guarded by hub.mu.
	rooms map[string]struct{}
}

func newSession(hub *Hub, conn *websocket.Conn, principal *auth.Principal, guard RoomGuard) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:        uuid.NewString(),
		hub:       hub,
		conn:      conn,
		principal: principal,
		guard:     guard,
		logger:    hub.logger,
		send:      make(chan []byte, hub.sendBuffer),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		rooms:     make(map[string]struct{}),
	}
}

// enqueue queues a frame without blocking. It reports false when the frame
// was dropped.
func (s *Session) enqueue(msg []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

func (s *Session) reply(event string, data any) {
	msg, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return
	}
	if !s.enqueue(msg) {
		s.hub.metrics.DeliveryDropped()
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.done)
		s.hub.unregister(s)
	})
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Debug("realtime write failed", zap.String("session", s.id), zap.Error(err))
				s.close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.close()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (s *Session) readPump() {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		if mt != websocket.TextMessage {
			continue
		}
		s.handle(raw)
	}
}

func (s *Session) handle(raw []byte) {
	if strings.EqualFold(strings.TrimSpace(string(raw)), msgPing) {
		s.reply("pong", nil)
		return
	}

	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.reply("error", map[string]string{"message": "malformed message"})
		return
	}

	switch msg.Type {
	case msgPing:
		s.reply("pong", nil)
	case msgJoinRoom:
		s.joinRoom(msg.Room)
	case msgLeaveRoom:
		s.hub.leave(s, msg.Room)
		s.reply("left", map[string]string{"room": msg.Room})
	default:
		s.reply("error", map[string]string{"message": "unknown message type"})
	}
}

func (s *Session) joinRoom(room string) {
	complaintID, ok := events.ComplaintFromRoom(room)
	if !ok {
		s.reply("error", map[string]string{"message": "unknown room", "room": room})
		return
	}
	if s.guard != nil {
		ctx, cancel := context.WithTimeout(s.ctx, guardTimeout)
		err := s.guard.CanSubscribe(ctx, s.principal, complaintID)
		cancel()
		if err != nil {
			s.logger.Debug("realtime join refused",
				zap.String("session", s.id),
				zap.String("room", room),
				zap.Error(err))
			s.reply("error", map[string]string{"message": "cannot join room", "room": room})
			return
		}
	}
	s.hub.join(s, room)
	s.reply("joined", map[string]string{"room": room})
}
