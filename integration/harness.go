package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/studyhive/server/api/rest"
	apisse "github.com/studyhive/server/api/sse"
	"github.com/studyhive/server/audit"
	"github.com/studyhive/server/cache"
	"github.com/studyhive/server/chat"
	"github.com/studyhive/server/config"
	"github.com/studyhive/server/identity"
	mw "github.com/studyhive/server/middleware"
	"github.com/studyhive/server/presence"
	"github.com/studyhive/server/realtime"
	"github.com/studyhive/server/social"
	"github.com/studyhive/server/stats"
	"github.com/studyhive/server/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// TestServer wraps a real HTTP server with all subsystems wired together.
type TestServer struct {
	DB     *gorm.DB
	Cache  cache.Cache
	PubSub cache.PubSub
	Server *httptest.Server
	URL    string
	Sec    config.SecurityConfig
}

var uniqueCounter int64

// UniqueID returns a process-unique identifier with the given prefix.
func UniqueID(prefix string) string {
	n := atomic.AddInt64(&uniqueCounter, 1)
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), n)
}

// NewTestServer creates a fully wired server for integration testing.
// It mirrors the dependency wiring in main.go.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	sec := config.SecurityConfig{
		JWTSecret:      "integration-test-secret",
		JWTTTLH:        72 * time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 2000,
	}
	appCfg := config.AppConfig{
		ChatHistoryLimit:  50,
		ChatMaxMessageLen: 500,
		NotificationLimit: 50,
		StatsCacheTTL:     time.Minute,
	}

	events := realtime.NewPublisher(ps, logger)
	resolver := identity.NewResolver(db)
	socialSvc := social.NewService(db, resolver, events, logger)
	presenceSvc := presence.NewService(db, resolver, events, logger)
	chatSvc := chat.NewService(db, c, resolver, events, appCfg, logger)
	statsSvc := stats.NewService(db, c, appCfg.StatsCacheTTL, logger)
	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(sec.RateLimitRPS), sec.RateLimitBurst, sec.RateLimitIdleTTL))

	authH := apirest.NewAuthHandler(db, c, sec, logger)
	socialH := apirest.NewSocialHandler(socialSvc)
	presenceH := apirest.NewPresenceHandler(presenceSvc)
	chatH := apirest.NewChatHandler(chatSvc)
	notifH := apirest.NewNotificationsHandler(db, appCfg)
	adminH := apirest.NewAdminHandler(db, c, sec, statsSvc, auditSvc, logger)
	sseH := apisse.NewHandler(ps, c, sec, logger)

	api := r.Group("/api")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.POST("/admin/login", adminH.Login)

	user := api.Group("", mw.Auth(sec, c))
	user.POST("/auth/logout", authH.Logout)
	user.GET("/auth/me", authH.Me)
	user.GET("/friends", socialH.ListFriends)
	user.DELETE("/friends/:id", socialH.RemoveFriend)
	user.GET("/friends/requests", socialH.ListRequests)
	user.POST("/friends/requests", socialH.SendRequest)
	user.POST("/friends/requests/:id/accept", socialH.AcceptRequest)
	user.POST("/friends/requests/:id/reject", socialH.RejectRequest)
	user.GET("/presence", presenceH.List)
	user.PUT("/presence", presenceH.SetStatus)
	user.GET("/chat/messages", chatH.History)
	user.POST("/chat/messages", chatH.Post)
	user.GET("/notifications", notifH.List)

	r.GET("/sse", sseH.ServeSSE)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &TestServer{
		DB:     db,
		Cache:  c,
		PubSub: ps,
		Server: srv,
		URL:    srv.URL,
		Sec:    sec,
	}
}

// Close shuts the server down.
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// Register creates a user account and returns its ID.
func (ts *TestServer) Register(t *testing.T, name, email, password string) string {
	t.Helper()
	resp := ts.PostJSON(t, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var result struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	ReadJSON(t, resp, &result)
	require.NotEmpty(t, result.User.ID)
	return result.User.ID
}

// Login authenticates a user and returns the session token.
func (ts *TestServer) Login(t *testing.T, email, password string) string {
	t.Helper()
	resp := ts.PostJSON(t, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Token string `json:"token"`
	}
	ReadJSON(t, resp, &result)
	require.NotEmpty(t, result.Token)
	return result.Token
}

// Get performs an authenticated GET request.
func (ts *TestServer) Get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// PostJSON performs a POST with a JSON body.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.doJSON(t, http.MethodPost, path, body, token)
}

// PutJSON performs a PUT with a JSON body.
func (ts *TestServer) PutJSON(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.doJSON(t, http.MethodPut, path, body, token)
}

// Delete performs an authenticated DELETE request.
func (ts *TestServer) Delete(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (ts *TestServer) doJSON(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// ReadJSON decodes a response body into out and closes the body.
func ReadJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
}
