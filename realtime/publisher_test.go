package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/studyhive/server/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPublisher(t *testing.T) (*Publisher, cache.PubSub) {
	ps, err := cache.NewPubSub(cache.CacheConfig{})
	require.NoError(t, err)
	l, _ := zap.NewDevelopment()
	return NewPublisher(ps, l), ps
}

func recvEvent(t *testing.T, ch <-chan *cache.Message) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestChange_Broadcast(t *testing.T) {
	p, ps := newTestPublisher(t)

	ch, cancel, err := ps.Subscribe(context.Background(), ChangeChannel(TableFriendRequests))
	require.NoError(t, err)
	defer cancel()

	p.Change(context.Background(), TableFriendRequests, ActionInsert, "req-1")

	ev := recvEvent(t, ch)
	assert.Equal(t, TableFriendRequests, ev.Table)
	assert.Equal(t, ActionInsert, ev.Action)
	assert.Equal(t, "req-1", ev.ID)
}

func TestNotify_UserChannel(t *testing.T) {
	p, ps := newTestPublisher(t)

	ch, cancel, err := ps.Subscribe(context.Background(), UserChannel("u-1"))
	require.NoError(t, err)
	defer cancel()

	p.Notify(context.Background(), "u-1", TableNotifications, ActionInsert, "n-1")

	ev := recvEvent(t, ch)
	assert.Equal(t, TableNotifications, ev.Table)
	assert.Equal(t, "n-1", ev.ID)
}

func TestChange_OtherTableNotReceived(t *testing.T) {
	p, ps := newTestPublisher(t)

	ch, cancel, err := ps.Subscribe(context.Background(), ChangeChannel(TableFriends))
	require.NoError(t, err)
	defer cancel()

	p.Change(context.Background(), TableGroupMessages, ActionInsert, "m-1")

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message on friends channel: %s", msg.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "changes:friends", ChangeChannel(TableFriends))
	assert.Equal(t, "user:abc", UserChannel("abc"))
}
