package realtime

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

// fakeConn records writes and close calls.
type fakeConn struct {
	writes []any
	closed bool
	fail   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	if c.fail {
		return errors.New("write failed")
	}
	c.writes = append(c.writes, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry(t *testing.T) {
	t.Run("Send reaches a registered connection", func(t *testing.T) {
		r := newTestRegistry()
		conn := &fakeConn{}
		r.Register("u1", conn)

		if !r.Send("u1", "hello") {
			t.Error("Expected Send to report delivery")
		}
		if len(conn.writes) != 1 || conn.writes[0] != "hello" {
			t.Errorf("Expected one write, got %v", conn.writes)
		}
	})

	t.Run("Send to an unknown user reports not connected", func(t *testing.T) {
		r := newTestRegistry()
		if r.Send("ghost", "boo") {
			t.Error("Expected Send to report no delivery")
		}
	})

	t.Run("re-register closes the previous connection", func(t *testing.T) {
		r := newTestRegistry()
		first := &fakeConn{}
		second := &fakeConn{}
		r.Register("u1", first)
		r.Register("u1", second)

		if !first.closed {
			t.Error("Expected the first connection to be closed")
		}
		r.Send("u1", "hi")
		if len(second.writes) != 1 {
			t.Errorf("Expected the event on the new connection, got %d writes", len(second.writes))
		}
		if len(first.writes) != 0 {
			t.Errorf("Expected nothing on the old connection, got %d writes", len(first.writes))
		}
	})

	t.Run("stale unregister keeps the replacement", func(t *testing.T) {
		r := newTestRegistry()
		first := &fakeConn{}
		second := &fakeConn{}
		r.Register("u1", first)
		r.Register("u1", second)

		// The goroutine serving the replaced connection shuts down late.
		r.Unregister("u1", first)

		if !r.IsConnected("u1") {
			t.Error("Expected the replacement connection to survive")
		}
		r.Unregister("u1", second)
		if r.IsConnected("u1") {
			t.Error("Expected the user to be disconnected")
		}
	})

	t.Run("write failure reports not delivered", func(t *testing.T) {
		r := newTestRegistry()
		r.Register("u1", &fakeConn{fail: true})
		if r.Send("u1", "oops") {
			t.Error("Expected Send to report failure")
		}
	})

	t.Run("Count tracks registrations", func(t *testing.T) {
		r := newTestRegistry()
		a := &fakeConn{}
		r.Register("a", a)
		r.Register("b", &fakeConn{})
		if got := r.Count(); got != 2 {
			t.Errorf("Count mismatch: got %d, want 2", got)
		}
		r.Unregister("a", a)
		if got := r.Count(); got != 1 {
			t.Errorf("Count mismatch: got %d, want 1", got)
		}
	})
}
