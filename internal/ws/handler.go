package ws

import (
	"net/http"

	"github.com/GriffinCanCode/TermOS/backend/internal/logging"
	"github.com/GriffinCanCode/TermOS/backend/internal/monitoring"
	"github.com/GriffinCanCode/TermOS/backend/internal/shared/id"
	"github.com/GriffinCanCode/TermOS/backend/internal/terminal"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Local UI shell; origin enforcement lives in CORS config
	},
}

// Message is the inbound wire format from the UI shell.
type Message struct {
	Type      string `json:"type"` // "write", "resize", "ping"
	SessionID string `json:"session_id,omitempty"`
	Data      string `json:"data,omitempty"`
	Cols      int    `json:"cols,omitempty"`
	Rows      int    `json:"rows,omitempty"`
}

// Handler manages websocket connections from UI shells.
type Handler struct {
	hub     *Hub
	manager *terminal.Manager
	metrics *monitoring.Metrics
	log     *logging.Logger
}

// NewHandler creates a websocket handler.
func NewHandler(hub *Hub, manager *terminal.Manager, metrics *monitoring.Metrics, log *logging.Logger) *Handler {
	return &Handler{
		hub:     hub,
		manager: manager,
		metrics: metrics,
		log:     log,
	}
}

// HandleConnection upgrades the request and services the connection until it
// closes.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := id.NewConnID()
	wc := h.hub.add(connID, conn)
	defer h.hub.remove(connID)

	if h.metrics != nil {
		h.metrics.WSOpened()
		defer h.metrics.WSClosed()
	}

	count := h.manager.Count()
	wc.send(Event{Type: "system", Message: "connected", Count: &count})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "write":
			h.manager.Write(msg.SessionID, []byte(msg.Data))
		case "resize":
			h.manager.Resize(msg.SessionID, msg.Cols, msg.Rows)
		case "ping":
			wc.send(Event{Type: "pong"})
		default:
			wc.send(Event{Type: "error", Message: "unknown message type"})
		}
	}
}
