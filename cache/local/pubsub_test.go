package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvOne(t *testing.T, ch <-chan *LocalMessage) *LocalMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPubSub_DeliversToSubscriber(t *testing.T) {
	ps := NewPubSub(8)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "events")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "events", "payload-1"))

	msg := recvOne(t, ch)
	assert.Equal(t, "events", msg.Channel)
	assert.Equal(t, "payload-1", msg.Payload)
}

func TestPubSub_OneSubscriptionManyChannels(t *testing.T) {
	ps := NewPubSub(8)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "a", "b")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "a", "from-a"))
	require.NoError(t, ps.Publish(ctx, "b", "from-b"))

	assert.Equal(t, "from-a", recvOne(t, ch).Payload)
	assert.Equal(t, "from-b", recvOne(t, ch).Payload)
}

func TestPubSub_FanOut(t *testing.T) {
	ps := NewPubSub(8)
	ctx := context.Background()

	ch1, cancel1, _ := ps.Subscribe(ctx, "bcast")
	ch2, cancel2, _ := ps.Subscribe(ctx, "bcast")
	defer cancel1()
	defer cancel2()

	require.NoError(t, ps.Publish(ctx, "bcast", "hi"))

	assert.Equal(t, "hi", recvOne(t, ch1).Payload)
	assert.Equal(t, "hi", recvOne(t, ch2).Payload)
}

func TestPubSub_CancelClosesAndStopsDelivery(t *testing.T) {
	ps := NewPubSub(8)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "short-lived")
	require.NoError(t, err)

	cancel()

	_, open := <-ch
	assert.False(t, open, "channel must be closed after cancel")

	// Publishing afterwards neither blocks nor panics.
	assert.NoError(t, ps.Publish(ctx, "short-lived", "late"))
}

func TestPubSub_CancelIsIdempotent(t *testing.T) {
	ps := NewPubSub(8)

	_, cancel, err := ps.Subscribe(context.Background(), "x")
	require.NoError(t, err)

	cancel()
	assert.NotPanics(t, cancel)
}

func TestPubSub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	ps := NewPubSub(1)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "busy")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "busy", "first"))
	require.NoError(t, ps.Publish(ctx, "busy", "overflow"))

	assert.Equal(t, "first", recvOne(t, ch).Payload)
	select {
	case msg := <-ch:
		t.Fatalf("expected overflow to be dropped, got %q", msg.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}
