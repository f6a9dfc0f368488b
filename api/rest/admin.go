package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/server/audit"
	"github.com/studyhive/server/cache"
	"github.com/studyhive/server/config"
	mw "github.com/studyhive/server/middleware"
	"github.com/studyhive/server/model"
	"github.com/studyhive/server/stats"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminHandler handles the admin/moderator console REST endpoints.
type AdminHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	sec    config.SecurityConfig
	stats  *stats.Service
	audit  *audit.Service
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB, c cache.Cache, sec config.SecurityConfig, st *stats.Service, au *audit.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, cache: c, sec: sec, stats: st, audit: au, logger: logger}
}

func (h *AdminHandler) record(c *gin.Context, action string, detail interface{}, errMsg string) {
	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		ActorID:   mw.GetUserID(c),
		ActorRole: mw.GetRole(c),
		Action:    action,
		Detail:    detail,
		Error:     errMsg,
		IP:        c.ClientIP(),
	})
}

// Login handles POST /api/admin/login. Console accounts are separate from
// the user directory and carry an admin or moderator role.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		AdminID  string `json:"admin_id" binding:"required,min=2,max=64"`
		Password string `json:"password" binding:"required,min=6,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var acc model.AdminAccount
	err := h.db.First(&acc, "id = ?", req.AdminID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)) != nil {
		h.audit.Log(audit.Entry{
			TraceID: mw.GetTraceID(c),
			ActorID: req.AdminID,
			Action:  "admin_login_failed",
			IP:      c.ClientIP(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := mw.GenerateToken(acc.ID, acc.Role, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Set(ctx, "session:"+token, acc.ID, h.sec.JWTTTLH)

	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		ActorID:   acc.ID,
		ActorRole: acc.Role,
		Action:    "admin_login",
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"token": token, "admin": acc})
}

// Statistics handles GET /api/admin/statistics.
func (h *AdminHandler) Statistics(c *gin.Context) {
	snapshot, err := h.stats.Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": snapshot})
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []model.User
	if err := h.db.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ResetUserPassword handles POST /api/admin/users/:id/reset-password.
func (h *AdminHandler) ResetUserPassword(c *gin.Context) {
	var req struct {
		NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.Param("id")
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	res := h.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("password_hash", string(hash))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	h.record(c, "reset_user_password", gin.H{"target_user_id": userID}, "")
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// ChangePassword handles POST /api/admin/password. The caller rotates their
// own console password; the old password must verify first.
func (h *AdminHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := mw.GetUserID(c)
	var acc model.AdminAccount
	if err := h.db.First(&acc, "id = ?", adminID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.OldPassword)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "old password incorrect"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if err := h.db.Model(&acc).Update("password_hash", string(hash)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.record(c, "change_admin_password", nil, "")
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// CreateModerator handles POST /api/admin/moderators. Admin role only
// (enforced by route middleware).
func (h *AdminHandler) CreateModerator(c *gin.Context) {
	var req struct {
		ModID    string `json:"mod_id" binding:"required,min=2,max=64"`
		Name     string `json:"name" binding:"required,min=2,max=64"`
		Password string `json:"password" binding:"required,min=6,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	acc := &model.AdminAccount{
		ID:           req.ModID,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         mw.RoleModerator,
		CreatedBy:    mw.GetUserID(c),
	}
	if err := h.db.Create(acc).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "id already taken"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	h.record(c, "create_moderator", gin.H{"mod_id": req.ModID}, "")
	c.JSON(http.StatusCreated, gin.H{"moderator": acc})
}

// ---- Complaints ----

// ListComplaints handles GET /api/admin/complaints.
func (h *AdminHandler) ListComplaints(c *gin.Context) {
	var complaints []model.Complaint
	q := h.db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&complaints).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// ReplyComplaint handles POST /api/admin/complaints/:id/reply. Replying
// resolves the complaint.
func (h *AdminHandler) ReplyComplaint(c *gin.Context) {
	var req struct {
		Reply string `json:"reply" binding:"required,max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	res := h.db.Model(&model.Complaint{}).
		Where("id = ?", c.Param("id")).
		Updates(map[string]interface{}{
			"admin_reply": req.Reply,
			"replied_at":  now,
			"replied_by":  mw.GetUserID(c),
			"status":      model.ComplaintResolved,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
		return
	}

	h.record(c, "reply_complaint", gin.H{"complaint_id": c.Param("id")}, "")
	c.JSON(http.StatusOK, gin.H{"message": "replied"})
}

// ---- Roles ----

// ListRoles handles GET /api/admin/roles.
func (h *AdminHandler) ListRoles(c *gin.Context) {
	var roles []model.UserRole
	if err := h.db.Order("created_at DESC").Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

// AssignRole handles POST /api/admin/roles. Admin role only.
func (h *AdminHandler) AssignRole(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required,oneof=user moderator admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	if err := h.db.Model(&model.User{}).Where("id = ?", req.UserID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	role := &model.UserRole{
		UserID:     req.UserID,
		Role:       req.Role,
		AssignedBy: mw.GetUserID(c),
	}
	err := h.db.Where("user_id = ?", req.UserID).
		Assign(model.UserRole{Role: req.Role, AssignedBy: role.AssignedBy}).
		FirstOrCreate(role).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.record(c, "assign_role", gin.H{"target_user_id": req.UserID, "role": req.Role}, "")
	c.JSON(http.StatusOK, gin.H{"role": role})
}

// SchedulerTasks handles GET /api/admin/scheduler.
func (h *AdminHandler) SchedulerTasks(names func() []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tasks": names()})
	}
}
