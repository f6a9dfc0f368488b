package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/studyhive/server/middleware"
	"github.com/studyhive/server/model"
	"gorm.io/gorm"
)

// PlannerHandler handles tasks and exams REST endpoints.
type PlannerHandler struct {
	db *gorm.DB
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(db *gorm.DB) *PlannerHandler {
	return &PlannerHandler{db: db}
}

// ---- Tasks ----

// ListTasks handles GET /api/tasks.
func (h *PlannerHandler) ListTasks(c *gin.Context) {
	var tasks []model.Task
	q := h.db.Where("user_id = ?", mw.GetUserID(c)).Order("created_at DESC")
	if date := c.Query("date"); date != "" {
		q = q.Where("date = ?", date)
	}
	if err := q.Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// CreateTask handles POST /api/tasks.
func (h *PlannerHandler) CreateTask(c *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required,max=200"`
		Date     string `json:"date" binding:"required,datetime=2006-01-02"`
		Priority string `json:"priority" binding:"omitempty,oneof=low medium high"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}

	task := &model.Task{
		UserID:   mw.GetUserID(c),
		Title:    req.Title,
		Date:     req.Date,
		Priority: req.Priority,
	}
	if err := h.db.Create(task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// ToggleTask handles POST /api/tasks/:id/toggle.
func (h *PlannerHandler) ToggleTask(c *gin.Context) {
	res := h.db.Model(&model.Task{}).
		Where("id = ? AND user_id = ?", c.Param("id"), mw.GetUserID(c)).
		Update("completed", gorm.Expr("NOT completed"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "toggled"})
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *PlannerHandler) DeleteTask(c *gin.Context) {
	res := h.db.Where("id = ? AND user_id = ?", c.Param("id"), mw.GetUserID(c)).
		Delete(&model.Task{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ---- Exams ----

// ListExams handles GET /api/exams.
func (h *PlannerHandler) ListExams(c *gin.Context) {
	var exams []model.Exam
	if err := h.db.Where("user_id = ?", mw.GetUserID(c)).
		Order("date").
		Find(&exams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": exams})
}

// CreateExam handles POST /api/exams.
func (h *PlannerHandler) CreateExam(c *gin.Context) {
	var req struct {
		Subject string `json:"subject" binding:"required,max=128"`
		Date    string `json:"date" binding:"required,datetime=2006-01-02"`
		Time    string `json:"time" binding:"omitempty,datetime=15:04"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exam := &model.Exam{
		UserID:  mw.GetUserID(c),
		Subject: req.Subject,
		Date:    req.Date,
		Time:    req.Time,
	}
	if err := h.db.Create(exam).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"exam": exam})
}

// DeleteExam handles DELETE /api/exams/:id.
func (h *PlannerHandler) DeleteExam(c *gin.Context) {
	res := h.db.Where("id = ? AND user_id = ?", c.Param("id"), mw.GetUserID(c)).
		Delete(&model.Exam{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "exam not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
