package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/server/model"
	"github.com/studyhive/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPlannerRouter(t *testing.T, userID string) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	h := NewPlannerHandler(db)

	r := gin.New()
	g := r.Group("/api", asUser(userID))
	g.GET("/tasks", h.ListTasks)
	g.POST("/tasks", h.CreateTask)
	g.POST("/tasks/:id/toggle", h.ToggleTask)
	g.DELETE("/tasks/:id", h.DeleteTask)
	g.GET("/exams", h.ListExams)
	g.POST("/exams", h.CreateExam)
	g.DELETE("/exams/:id", h.DeleteExam)
	return r, db
}

func TestCreateTask_Defaults(t *testing.T) {
	r, db := newPlannerRouter(t, "u-1")

	w := postJSON(t, r, "/api/tasks", gin.H{"title": "Read chapter 3", "date": "2026-09-01"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var task model.Task
	require.NoError(t, db.First(&task, "user_id = ?", "u-1").Error)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.False(t, task.Completed)
}

func TestCreateTask_BadDate(t *testing.T) {
	r, _ := newPlannerRouter(t, "u-1")
	w := postJSON(t, r, "/api/tasks", gin.H{"title": "x", "date": "tomorrow"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTasks_FilterByDate(t *testing.T) {
	r, db := newPlannerRouter(t, "u-1")

	require.NoError(t, db.Create(&model.Task{UserID: "u-1", Title: "a", Date: "2026-09-01"}).Error)
	require.NoError(t, db.Create(&model.Task{UserID: "u-1", Title: "b", Date: "2026-09-02"}).Error)
	require.NoError(t, db.Create(&model.Task{UserID: "u-2", Title: "other", Date: "2026-09-01"}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?date=2026-09-01", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tasks []model.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "a", resp.Tasks[0].Title)
}

func TestToggleTask_FlipsCompletion(t *testing.T) {
	r, db := newPlannerRouter(t, "u-1")

	task := &model.Task{UserID: "u-1", Title: "a", Date: "2026-09-01"}
	require.NoError(t, db.Create(task).Error)

	require.Equal(t, http.StatusOK, postJSON(t, r, "/api/tasks/"+task.ID+"/toggle", gin.H{}, nil).Code)
	var got model.Task
	require.NoError(t, db.First(&got, "id = ?", task.ID).Error)
	assert.True(t, got.Completed)

	require.Equal(t, http.StatusOK, postJSON(t, r, "/api/tasks/"+task.ID+"/toggle", gin.H{}, nil).Code)
	require.NoError(t, db.First(&got, "id = ?", task.ID).Error)
	assert.False(t, got.Completed)
}

func TestToggleTask_OtherUsersTask404(t *testing.T) {
	r, db := newPlannerRouter(t, "u-1")

	task := &model.Task{UserID: "u-2", Title: "not yours", Date: "2026-09-01"}
	require.NoError(t, db.Create(task).Error)

	w := postJSON(t, r, "/api/tasks/"+task.ID+"/toggle", gin.H{}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTask_OwnOnly(t *testing.T) {
	r, db := newPlannerRouter(t, "u-1")

	mine := &model.Task{UserID: "u-1", Title: "mine", Date: "2026-09-01"}
	theirs := &model.Task{UserID: "u-2", Title: "theirs", Date: "2026-09-01"}
	require.NoError(t, db.Create(mine).Error)
	require.NoError(t, db.Create(theirs).Error)

	req := httptest.NewRequest(http.MethodDelete, "/api/tasks/"+mine.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/tasks/"+theirs.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateExam_TimeOptional(t *testing.T) {
	r, db := newPlannerRouter(t, "u-1")

	w := postJSON(t, r, "/api/exams", gin.H{"subject": "Physics", "date": "2026-10-10"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postJSON(t, r, "/api/exams", gin.H{"subject": "Math", "date": "2026-10-11", "time": "09:30"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var exams []model.Exam
	require.NoError(t, db.Order("date").Find(&exams).Error)
	require.Len(t, exams, 2)
	assert.Equal(t, "09:30", exams[1].Time)
}

func TestCreateExam_BadTime(t *testing.T) {
	r, _ := newPlannerRouter(t, "u-1")
	w := postJSON(t, r, "/api/exams", gin.H{"subject": "Math", "date": "2026-10-11", "time": "9am"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
