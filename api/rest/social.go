package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/studyhive/server/middleware"
	"github.com/studyhive/server/social"
)

// SocialHandler handles friends and friend-request REST endpoints.
type SocialHandler struct {
	svc *social.Service
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(svc *social.Service) *SocialHandler {
	return &SocialHandler{svc: svc}
}

// ListFriends handles GET /api/friends.
func (h *SocialHandler) ListFriends(c *gin.Context) {
	friends, err := h.svc.Friends(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// ListRequests handles GET /api/friends/requests.
func (h *SocialHandler) ListRequests(c *gin.Context) {
	reqs, err := h.svc.PendingRequests(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// SendRequest handles POST /api/friends/requests.
func (h *SocialHandler) SendRequest(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.svc.SendFriendRequest(c.Request.Context(), mw.GetUserID(c), req.Email)
	switch {
	case errors.Is(err, social.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no user with that email"})
	case errors.Is(err, social.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot send a request to yourself"})
	case errors.Is(err, social.ErrAlreadyFriends):
		c.JSON(http.StatusConflict, gin.H{"error": "already friends"})
	case errors.Is(err, social.ErrAlreadyRequested):
		c.JSON(http.StatusConflict, gin.H{"error": "request already pending"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusCreated, gin.H{"request": view})
	}
}

// AcceptRequest handles POST /api/friends/requests/:id/accept.
func (h *SocialHandler) AcceptRequest(c *gin.Context) {
	err := h.svc.Accept(c.Request.Context(), mw.GetUserID(c), c.Param("id"))
	switch {
	case errors.Is(err, social.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
	case errors.Is(err, social.ErrRequestClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "request already handled"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "accepted"})
	}
}

// RejectRequest handles POST /api/friends/requests/:id/reject.
func (h *SocialHandler) RejectRequest(c *gin.Context) {
	err := h.svc.Reject(c.Request.Context(), mw.GetUserID(c), c.Param("id"))
	switch {
	case errors.Is(err, social.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
	case errors.Is(err, social.ErrRequestClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "request already handled"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "rejected"})
	}
}

// RemoveFriend handles DELETE /api/friends/:id.
func (h *SocialHandler) RemoveFriend(c *gin.Context) {
	friendID := c.Param("id")
	if friendID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.svc.RemoveFriend(c.Request.Context(), mw.GetUserID(c), friendID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}
