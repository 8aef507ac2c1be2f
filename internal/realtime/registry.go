// Package realtime tracks live websocket connections and pushes events to
// connected users. Delivery is best effort: a user without a connection
// simply does not receive the push, and the data remains queryable.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/linkuphq/linkup/internal/metrics"
)

// Conn is the subset of a websocket connection the registry needs.
// *websocket.Conn from gorilla/websocket satisfies it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Registry maps user IDs to their live connections. Each user holds at most
// one connection; a new registration replaces and closes the previous one.
type Registry struct {
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]Conn
}

// NewRegistry creates an empty connection registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		conns:  make(map[string]Conn),
	}
}

// Register records the user's connection, closing any previous one.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	old := r.conns[userID]
	r.conns[userID] = conn
	metrics.ConnectedUsers.Set(float64(len(r.conns)))
	r.mu.Unlock()

	if old != nil {
		old.Close()
		r.logger.Debug("replaced existing connection", "user_id", userID)
	}
	r.logger.Info("user connected", "user_id", userID)
}

// Unregister removes the user's registration, but only if it still points at
// conn. A stale unregister from a replaced connection must not drop the
// replacement.
func (r *Registry) Unregister(userID string, conn Conn) {
	r.mu.Lock()
	current, ok := r.conns[userID]
	if ok && current == conn {
		delete(r.conns, userID)
		metrics.ConnectedUsers.Set(float64(len(r.conns)))
	}
	r.mu.Unlock()

	if ok && current == conn {
		r.logger.Info("user disconnected", "user_id", userID)
	}
}

// IsConnected reports whether the user has a live connection.
func (r *Registry) IsConnected(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[userID]
	return ok
}

// Count returns the number of connected users.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Send writes a JSON event to the user's connection if one exists. It
// reports whether the user was connected; write errors are logged and
// treated as not delivered.
func (r *Registry) Send(userID string, v any) bool {
	r.mu.Lock()
	conn, ok := r.conns[userID]
	r.mu.Unlock()

	if !ok {
		return false
	}
	if err := conn.WriteJSON(v); err != nil {
		r.logger.Warn("failed to push event", "user_id", userID, "error", err)
		return false
	}
	return true
}
