package integration

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSE_RejectsWithoutToken(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/sse")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSSE_RejectsStaleSession(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	email := UniqueID("alice") + "@example.com"
	ts.Register(t, "Alice", email, "alicepass1")
	tok := ts.Login(t, email, "alicepass1")

	// Logout invalidates the session; the SSE endpoint must refuse the token.
	resp := ts.PostJSON(t, "/api/auth/logout", nil, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/sse?token=" + tok)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSSE_DeliversChangeEvents(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	aliceEmail := UniqueID("alice") + "@example.com"
	bobEmail := UniqueID("bob") + "@example.com"
	ts.Register(t, "Alice", aliceEmail, "alicepass1")
	ts.Register(t, "Bob", bobEmail, "bobpass123")
	aliceTok := ts.Login(t, aliceEmail, "alicepass1")
	bobTok := ts.Login(t, bobEmail, "bobpass123")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sse?token="+bobTok, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	scanner := bufio.NewScanner(resp.Body)
	lines := make(chan string, 64)
	go func() {
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	// The stream opens with a connected event.
	waitForLine(t, lines, "event: connected")

	// A chat post from Alice produces a group_messages change event.
	post := ts.PostJSON(t, "/api/chat/messages", map[string]string{"message": "hello stream"}, aliceTok)
	require.Equal(t, http.StatusCreated, post.StatusCode)
	post.Body.Close()

	waitForLine(t, lines, "event: change")
	data := waitForLine(t, lines, "data: ")
	assert.Contains(t, data, `"table":"group_messages"`)
	assert.Contains(t, data, `"action":"insert"`)
}

// waitForLine reads stream lines until one starts with the given prefix.
func waitForLine(t *testing.T, lines <-chan string, prefix string) string {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed while waiting for %q", prefix)
			}
			if strings.HasPrefix(line, prefix) {
				return line
			}
		case <-deadline:
			t.Fatalf("timed out waiting for line with prefix %q", prefix)
		}
	}
}
