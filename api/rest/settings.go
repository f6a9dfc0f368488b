package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/studyhive/server/middleware"
	"github.com/studyhive/server/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsHandler handles timer settings and preferences REST endpoints.
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// GetTimer handles GET /api/settings/timer. Creates defaults on first read.
func (h *SettingsHandler) GetTimer(c *gin.Context) {
	userID := mw.GetUserID(c)
	var settings model.UserSettings
	err := h.db.First(&settings, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = model.UserSettings{UserID: userID, WorkTime: 25, BreakTime: 5}
		if err := h.db.Create(&settings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateTimer handles PUT /api/settings/timer.
func (h *SettingsHandler) UpdateTimer(c *gin.Context) {
	var req struct {
		WorkTime  int `json:"work_time" binding:"required,min=1,max=180"`
		BreakTime int `json:"break_time" binding:"required,min=1,max=60"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings := &model.UserSettings{
		UserID:    mw.GetUserID(c),
		WorkTime:  req.WorkTime,
		BreakTime: req.BreakTime,
	}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"work_time", "break_time"}),
	}).Create(settings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// GetPreferences handles GET /api/settings/preferences.
func (h *SettingsHandler) GetPreferences(c *gin.Context) {
	userID := mw.GetUserID(c)
	var prefs model.UserPreferences
	err := h.db.First(&prefs, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prefs = model.UserPreferences{UserID: userID, Notifications: true}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// UpdatePreferences handles PUT /api/settings/preferences.
func (h *SettingsHandler) UpdatePreferences(c *gin.Context) {
	var req struct {
		DarkMode      *bool `json:"dark_mode" binding:"required"`
		Notifications *bool `json:"notifications" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs := &model.UserPreferences{
		UserID:        mw.GetUserID(c),
		DarkMode:      *req.DarkMode,
		Notifications: *req.Notifications,
	}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"dark_mode", "notifications"}),
	}).Create(prefs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
