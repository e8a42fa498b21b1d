package http

import (
	"encoding/base64"
	"net/http"

	"github.com/GriffinCanCode/TermOS/backend/internal/logging"
	"github.com/GriffinCanCode/TermOS/backend/internal/shared/id"
	"github.com/GriffinCanCode/TermOS/backend/internal/terminal"
	"github.com/gin-gonic/gin"
)

// Handlers contains the REST handlers over the session manager surface.
//
// The manager's semantics carry through: write/resize on unknown ids are
// silent no-ops, and create/restart report failure as a boolean rather than
// an error payload.
type Handlers struct {
	manager *terminal.Manager
	log     *logging.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(manager *terminal.Manager, log *logging.Logger) *Handlers {
	return &Handlers{manager: manager, log: log}
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "online",
		"service":  "termos-backend",
		"sessions": h.manager.Count(),
	})
}

// Health handles health checks.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type createRequest struct {
	ID           string `json:"id"`
	Cwd          string `json:"cwd" binding:"required"`
	Kind         string `json:"kind"`
	Shell        string `json:"shell"`
	AgentVariant string `json:"agent_variant"`
}

// CreateSession spawns a new session. The UI shell normally assigns the id;
// one is generated when absent.
func (h *Handlers) CreateSession(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	sessionID := req.ID
	if sessionID == "" {
		sessionID = string(id.NewSessionID())
	}

	ok := h.manager.Create(sessionID, req.Cwd, terminal.ParseKind(req.Kind), req.Shell, req.AgentVariant)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "id": sessionID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": sessionID})
}

type writeRequest struct {
	Data string `json:"data"`
}

// WriteSession sends input to a session. Unknown ids are stale calls and
// succeed as no-ops.
func (h *Handlers) WriteSession(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.manager.Write(c.Param("id"), []byte(req.Data))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type resizeRequest struct {
	Cols int `json:"cols" binding:"required"`
	Rows int `json:"rows" binding:"required"`
}

// ResizeSession changes terminal dimensions.
func (h *Handlers) ResizeSession(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.manager.Resize(c.Param("id"), req.Cols, req.Rows)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// KillSession terminates a session.
func (h *Handlers) KillSession(c *gin.Context) {
	existed := h.manager.Kill(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true, "existed": existed})
}

type restartRequest struct {
	Cwd          string `json:"cwd" binding:"required"`
	Shell        string `json:"shell"`
	AgentVariant string `json:"agent_variant"`
}

// RestartSession re-creates a session under the same id with a new working
// directory, preserving scrollback.
func (h *Handlers) RestartSession(c *gin.Context) {
	var req restartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	ok := h.manager.Restart(c.Param("id"), req.Cwd, req.Shell, req.AgentVariant)
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// GetSession returns session existence and its creation-time cwd.
func (h *Handlers) GetSession(c *gin.Context) {
	sessionID := c.Param("id")
	cwd, ok := h.manager.Cwd(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": true, "id": sessionID, "cwd": cwd})
}

// ListSessions returns all live sessions.
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions := h.manager.Sessions()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// GetBuffer returns the restore-filtered output snapshot. The UI shell calls
// DELETE after consuming it to avoid replaying the same scrollback twice.
func (h *Handlers) GetBuffer(c *gin.Context) {
	snapshot, ok := h.manager.OutputSnapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"output":        snapshot,
		"output_base64": base64.StdEncoding.EncodeToString([]byte(snapshot)),
		"length":        len(snapshot),
	})
}

// ClearBuffer empties a session's output buffer.
func (h *Handlers) ClearBuffer(c *gin.Context) {
	h.manager.ClearOutput(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
