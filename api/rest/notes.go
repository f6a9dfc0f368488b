package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/studyhive/server/middleware"
	"github.com/studyhive/server/model"
	"gorm.io/gorm"
)

// NotesHandler handles note REST endpoints.
type NotesHandler struct {
	db *gorm.DB
}

// NewNotesHandler creates a new NotesHandler.
func NewNotesHandler(db *gorm.DB) *NotesHandler {
	return &NotesHandler{db: db}
}

// List handles GET /api/notes. Returns the user's own notes plus all
// group notes.
func (h *NotesHandler) List(c *gin.Context) {
	var notes []model.Note
	if err := h.db.
		Where("user_id = ? OR is_group_note = ?", mw.GetUserID(c), true).
		Order("updated_at DESC").
		Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// Create handles POST /api/notes.
func (h *NotesHandler) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,max=200"`
		Content     string `json:"content"`
		IsGroupNote bool   `json:"is_group_note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note := &model.Note{
		UserID:      mw.GetUserID(c),
		Title:       req.Title,
		Content:     req.Content,
		IsGroupNote: req.IsGroupNote,
	}
	if err := h.db.Create(note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// Update handles PUT /api/notes/:id. Only the owner can edit a note.
func (h *NotesHandler) Update(c *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required,max=200"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.db.Model(&model.Note{}).
		Where("id = ? AND user_id = ?", c.Param("id"), mw.GetUserID(c)).
		Updates(map[string]interface{}{"title": req.Title, "content": req.Content})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// Delete handles DELETE /api/notes/:id.
func (h *NotesHandler) Delete(c *gin.Context) {
	res := h.db.Where("id = ? AND user_id = ?", c.Param("id"), mw.GetUserID(c)).
		Delete(&model.Note{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
