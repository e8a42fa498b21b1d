package ws

import (
	"encoding/base64"
	"sync"

	"github.com/GriffinCanCode/TermOS/backend/internal/logging"
	"github.com/GriffinCanCode/TermOS/backend/internal/shared/id"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is the wire format pushed to connected UI shells.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	// Data carries session output bytes, base64-encoded: terminal streams
	// are not guaranteed to be valid UTF-8.
	Data    string `json:"data,omitempty"`
	Code    *int   `json:"code,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

type connection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *connection) send(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans session events out to every connected UI shell. It implements the
// session manager's Sink.
type Hub struct {
	log *logging.Logger

	mu    sync.Mutex
	conns map[id.ConnID]*connection
}

// NewHub creates an empty hub.
func NewHub(log *logging.Logger) *Hub {
	return &Hub{
		log:   log,
		conns: make(map[id.ConnID]*connection),
	}
}

func (h *Hub) add(connID id.ConnID, conn *websocket.Conn) *connection {
	c := &connection{conn: conn}
	h.mu.Lock()
	h.conns[connID] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) remove(connID id.ConnID) {
	h.mu.Lock()
	delete(h.conns, connID)
	h.mu.Unlock()
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	conns := make([]*connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.send(ev); err != nil {
			h.log.Debug("websocket send failed", zap.Error(err))
		}
	}
}

// Output delivers a session output chunk to all connected shells.
func (h *Hub) Output(sessionID string, data []byte) {
	h.broadcast(Event{
		Type:      "output",
		SessionID: sessionID,
		Data:      base64.StdEncoding.EncodeToString(data),
	})
}

// Exit reports a session's process exit.
func (h *Hub) Exit(sessionID string, code int) {
	h.broadcast(Event{
		Type:      "exit",
		SessionID: sessionID,
		Code:      &code,
	})
}

// SessionCountChanged reports the live session count. The UI shell uses a
// nonzero count to hold its OS suspension inhibitor.
func (h *Hub) SessionCountChanged(count int) {
	h.broadcast(Event{
		Type:  "session_count",
		Count: &count,
	})
}
