package realtime

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/linkuphq/linkup/internal/middleware"
)

// Event is the wire envelope for every push. Payload shape depends on the
// event type.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// safeConn serializes writes to a websocket connection. gorilla/websocket
// allows at most one concurrent writer.
type safeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *safeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *safeConn) Close() error {
	return c.conn.Close()
}

// Gateway upgrades authenticated HTTP requests to websocket connections and
// keeps them registered for their lifetime.
type Gateway struct {
	registry *Registry
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewGateway creates a websocket gateway backed by the given registry.
func NewGateway(registry *Registry, logger *slog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth happens via the bearer token, not the origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles the websocket endpoint. The request must already carry
// an authenticated user in its context.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	raw, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	conn := &safeConn{conn: raw}
	g.registry.Register(userID, conn)
	defer func() {
		g.registry.Unregister(userID, conn)
		conn.Close()
	}()

	// Clients only receive; drain incoming frames until the peer goes away.
	for {
		if _, _, err := raw.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Debug("websocket read error", "user_id", userID, "error", err)
			}
			return
		}
	}
}
