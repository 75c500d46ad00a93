package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"skincare/internal/domain"
)

type client struct {
	actor domain.Actor
	conn  *websocket.Conn
	// gorilla connections allow one concurrent writer.
	writeMu sync.Mutex
}

// writeDeadline is writeWait from now, or ctx's deadline if that is sooner.
func writeDeadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func (c *client) writeJSON(ctx context.Context, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(writeDeadline(ctx)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *client) writeControl(messageType int) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(messageType, nil, time.Now().Add(writeWait))
}

// Hub keeps one websocket per actor. Booking events go to the booking's
// customer, its specialist and every connected staff member.
type Hub struct {
	connections map[string]*client
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*client),
	}
}

func connKey(a domain.Actor) string {
	return fmt.Sprintf("%s:%d", a.Role, a.ID)
}

func (h *Hub) Register(actor domain.Actor, conn *websocket.Conn) *client {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	key := connKey(actor)
	if old, exists := h.connections[key]; exists {
		_ = old.conn.Close()
	}

	c := &client{actor: actor, conn: conn}
	h.connections[key] = c
	return c
}

// Unregister removes c if it is still the actor's current connection.
func (h *Hub) Unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	key := connKey(c.actor)
	if cur, exists := h.connections[key]; exists && cur == c {
		delete(h.connections, key)
	}
	_ = c.conn.Close()
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) recipients(e Event) []*client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	out := make([]*client, 0, 2)
	for _, c := range h.connections {
		switch {
		case c.actor.IsStaff():
			out = append(out, c)
		case c.actor.IsCustomer(e.CustomerID):
			out = append(out, c)
		case e.SpecialistID != nil && c.actor.IsSpecialist(*e.SpecialistID):
			out = append(out, c)
		}
	}
	return out
}

// Notify writes e to every interested connection. A failed or timed out
// write drops that connection; it is not reported as an error.
func (h *Hub) Notify(ctx context.Context, e Event) error {
	for _, c := range h.recipients(e) {
		if err := c.writeJSON(ctx, e); err != nil {
			h.Unregister(c)
		}
	}
	return nil
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for key, c := range h.connections {
		_ = c.conn.Close()
		delete(h.connections, key)
	}
}
