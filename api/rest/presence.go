package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/studyhive/server/middleware"
	"github.com/studyhive/server/presence"
)

// PresenceHandler handles study-status REST endpoints.
type PresenceHandler struct {
	svc *presence.Service
}

// NewPresenceHandler creates a new PresenceHandler.
func NewPresenceHandler(svc *presence.Service) *PresenceHandler {
	return &PresenceHandler{svc: svc}
}

// SetStatus handles PUT /api/presence.
func (h *PresenceHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status  string `json:"status" binding:"required"`
		Subject string `json:"subject" binding:"max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.SetStatus(c.Request.Context(), mw.GetUserID(c), req.Status, req.Subject)
	if errors.Is(err, presence.ErrInvalidStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

// List handles GET /api/presence.
func (h *PresenceHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": entries})
}
