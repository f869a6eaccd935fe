package realtime

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
)

// Resolver turns a bearer token into a principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// RoomGuard decides whether a principal may follow a complaint's room.
type RoomGuard interface {
	CanSubscribe(ctx context.Context, principal *auth.Principal, complaintID string) error
}

// Handler upgrades authenticated requests to realtime sessions.
type Handler struct {
	hub      *Hub
	resolver Resolver
	guard    RoomGuard
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler builds the websocket endpoint. allowedOrigins of ["*"] accepts
// any browser origin.
func NewHandler(hub *Hub, resolver Resolver, guard RoomGuard, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		hub:      hub,
		resolver: resolver,
		guard:    guard,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = auth.BearerToken(r.Header.Get("Authorization"))
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	principal, err := h.resolver.Resolve(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	session := newSession(h.hub, conn, principal, h.guard)
	if !h.hub.register(session) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	go session.writePump()
	session.readPump()
}

// NewMux wires the websocket endpoint behind CORS.
func NewMux(handler *Handler, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", handler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: !allowsAny(allowedOrigins),
	})
	return c.Handler(mux)
}

func originChecker(allowed []string) func(*http.Request) bool {
	if allowsAny(allowed) {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[strings.ToLower(origin)] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}

func allowsAny(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
