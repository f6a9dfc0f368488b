package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/server/chat"
	mw "github.com/studyhive/server/middleware"
)

// ChatHandler handles group chat REST endpoints.
type ChatHandler struct {
	svc *chat.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// History handles GET /api/chat/messages.
func (h *ChatHandler) History(c *gin.Context) {
	msgs, err := h.svc.History(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Post handles POST /api/chat/messages.
func (h *ChatHandler) Post(c *gin.Context) {
	var req struct {
		Message  string   `json:"message" binding:"required"`
		Mentions []string `json:"mentions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.svc.Post(c.Request.Context(), mw.GetUserID(c), req.Message, req.Mentions)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
	case errors.Is(err, chat.ErrTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message too long"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": view})
	}
}
