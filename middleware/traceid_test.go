package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceRequest(t *testing.T, header string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(TraceID())
	r.GET("/t", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	if header != "" {
		req.Header.Set(TraceIDHeader, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w
}

func TestTraceID_GeneratedWhenAbsent(t *testing.T) {
	w := traceRequest(t, "")

	id := w.Body.String()
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "generated trace ID must be a UUID")
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))
}

func TestTraceID_ValidHeaderHonored(t *testing.T) {
	supplied := uuid.NewString()
	w := traceRequest(t, supplied)

	assert.Equal(t, supplied, w.Body.String())
	assert.Equal(t, supplied, w.Header().Get(TraceIDHeader))
}

func TestTraceID_JunkHeaderReplaced(t *testing.T) {
	w := traceRequest(t, "not-a-uuid'; DROP TABLE logs;--")

	id := w.Body.String()
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "junk header must be replaced with a real UUID")
	assert.NotEqual(t, "not-a-uuid'; DROP TABLE logs;--", id)
}

func TestTraceID_DistinctAcrossRequests(t *testing.T) {
	first := traceRequest(t, "").Body.String()
	second := traceRequest(t, "").Body.String()
	assert.NotEqual(t, first, second)
}

func TestGetTraceID_OutsideMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))
}
