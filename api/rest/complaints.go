package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/server/model"
	"gorm.io/gorm"
)

// ComplaintsHandler handles the public complaint submission endpoint.
// Complaint management lives in the admin handler.
type ComplaintsHandler struct {
	db *gorm.DB
}

// NewComplaintsHandler creates a new ComplaintsHandler.
func NewComplaintsHandler(db *gorm.DB) *ComplaintsHandler {
	return &ComplaintsHandler{db: db}
}

// Submit handles POST /api/complaints. No auth required, complaints can be
// filed from the landing page before login.
func (h *ComplaintsHandler) Submit(c *gin.Context) {
	var req struct {
		Email   string `json:"email" binding:"required,email,max=128"`
		Phone   string `json:"phone" binding:"max=32"`
		Subject string `json:"subject" binding:"required,max=200"`
		Message string `json:"message" binding:"required,max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint := &model.Complaint{
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Status:  model.ComplaintPending,
	}
	if err := h.db.Create(complaint).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"complaint": complaint})
}
