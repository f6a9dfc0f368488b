package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/server/config"
	mw "github.com/studyhive/server/middleware"
	"github.com/studyhive/server/model"
	"gorm.io/gorm"
)

// NotificationsHandler handles notification feed REST endpoints.
type NotificationsHandler struct {
	db  *gorm.DB
	cfg config.AppConfig
}

// NewNotificationsHandler creates a new NotificationsHandler.
func NewNotificationsHandler(db *gorm.DB, cfg config.AppConfig) *NotificationsHandler {
	if cfg.NotificationLimit <= 0 {
		cfg.NotificationLimit = 50
	}
	return &NotificationsHandler{db: db, cfg: cfg}
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(c *gin.Context) {
	var notifs []model.Notification
	if err := h.db.Where("user_id = ?", mw.GetUserID(c)).
		Order("created_at DESC").
		Limit(h.cfg.NotificationLimit).
		Find(&notifs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifs})
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	res := h.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), mw.GetUserID(c)).
		Update("read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "read"})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *gin.Context) {
	if err := h.db.Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", mw.GetUserID(c), false).
		Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all read"})
}

// Delete handles DELETE /api/notifications/:id.
func (h *NotificationsHandler) Delete(c *gin.Context) {
	res := h.db.Where("id = ? AND user_id = ?", c.Param("id"), mw.GetUserID(c)).
		Delete(&model.Notification{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
