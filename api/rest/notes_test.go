package rest

import (
	"bytes"
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

func newNotesRouter(t *testing.T, userID string) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	h := NewNotesHandler(db)

	r := gin.New()
	g := r.Group("/api", asUser(userID))
	g.GET("/notes", h.List)
	g.POST("/notes", h.Create)
	g.PUT("/notes/:id", h.Update)
	g.DELETE("/notes/:id", h.Delete)
	return r, db
}

func putJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNotesList_OwnPlusGroup(t *testing.T) {
	r, db := newNotesRouter(t, "u-1")

	require.NoError(t, db.Create(&model.Note{UserID: "u-1", Title: "mine"}).Error)
	require.NoError(t, db.Create(&model.Note{UserID: "u-2", Title: "shared", IsGroupNote: true}).Error)
	require.NoError(t, db.Create(&model.Note{UserID: "u-2", Title: "private"}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notes []model.Note `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notes, 2)
	titles := []string{resp.Notes[0].Title, resp.Notes[1].Title}
	assert.ElementsMatch(t, []string{"mine", "shared"}, titles)
}

func TestNotesUpdate_OwnerOnly(t *testing.T) {
	r, db := newNotesRouter(t, "u-1")

	groupNote := &model.Note{UserID: "u-2", Title: "shared", IsGroupNote: true}
	require.NoError(t, db.Create(groupNote).Error)

	// Visible to u-1 but not editable.
	w := putJSON(t, r, "/api/notes/"+groupNote.ID, gin.H{"title": "hijacked"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	mine := &model.Note{UserID: "u-1", Title: "draft"}
	require.NoError(t, db.Create(mine).Error)
	w = putJSON(t, r, "/api/notes/"+mine.ID, gin.H{"title": "final", "content": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Note
	require.NoError(t, db.First(&got, "id = ?", mine.ID).Error)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "done", got.Content)
}

func TestNotesDelete_NotFoundForOthers(t *testing.T) {
	r, db := newNotesRouter(t, "u-1")

	theirs := &model.Note{UserID: "u-2", Title: "x"}
	require.NoError(t, db.Create(theirs).Error)

	req := httptest.NewRequest(http.MethodDelete, "/api/notes/"+theirs.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
