package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func recv(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(testEventuallyTimeout):
		t.Fatal("no message delivered")
		return Event{}
	}
}

func TestHub_SubscribeRoutesPostEvents(t *testing.T) {
	hub := NewHub()
	viewer, err := hub.Register("", nil)
	require.NoError(t, err)
	other, err := hub.Register("u2", nil)
	require.NoError(t, err)

	hub.HandleIncoming(viewer, []byte(`{"action":"subscribe","post_id":"p1"}`))
	assert.Equal(t, 1, hub.Subscribers("p1"))

	NewDispatcher(hub, nil).LikeCountChanged(context.Background(), "p1", 4)

	ev := recv(t, viewer)
	assert.Equal(t, EventLikeCountChanged, ev.Type)
	payload := ev.Payload.(map[string]interface{})
	assert.Equal(t, "p1", payload["post_id"])
	assert.Equal(t, float64(4), payload["count"])

	assert.Empty(t, other.Send)

	hub.HandleIncoming(viewer, []byte(`{"action":"unsubscribe","post_id":"p1"}`))
	assert.Equal(t, 0, hub.Subscribers("p1"))

	_ = hub.Shutdown(context.Background())
}

func TestHub_BroadcastAllAndUnregister(t *testing.T) {
	hub := NewHub()
	a, err := hub.Register("u1", nil)
	require.NoError(t, err)
	b, err := hub.Register("", nil)
	require.NoError(t, err)
	hub.Subscribe(a, "p1")

	NewDispatcher(hub, nil).ContentChanged(context.Background(), "blog", "p1", "updated")
	assert.Equal(t, EventContentChanged, recv(t, a).Type)
	assert.Equal(t, EventContentChanged, recv(t, b).Type)

	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.Count())
	assert.Equal(t, 0, hub.Subscribers("p1"))

	// second unregister is a no-op
	hub.UnregisterClient(a)

	_ = hub.Shutdown(context.Background())
	_, err = hub.Register("u3", nil)
	assert.ErrorIs(t, err, ErrHubFull)
}

func TestHub_IgnoresMalformedCommands(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("", nil)
	require.NoError(t, err)

	hub.HandleIncoming(c, []byte(`not json`))
	hub.HandleIncoming(c, []byte(`{"action":"subscribe"}`))
	hub.HandleIncoming(c, []byte(`{"action":"explode","post_id":"p1"}`))
	assert.Equal(t, 0, hub.Subscribers("p1"))
}

func TestTrySend_DropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("", nil)
	require.NoError(t, err)

	for i := 0; i < cap(c.Send)+5; i++ {
		c.TrySend([]byte(`{}`))
	}
	assert.Len(t, c.Send, cap(c.Send))

	hub.UnregisterClient(c)
	assert.NotPanics(t, func() { c.TrySend([]byte(`{}`)) })
}

func TestDispatcher_ThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hub := NewHub()
	notifier := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	viewer, err := hub.Register("", nil)
	require.NoError(t, err)
	hub.Subscribe(viewer, "p9")

	d := NewDispatcher(hub, notifier)
	assert.Eventually(t, func() bool {
		d.LikeCountChanged(context.Background(), "p9", 1)
		return len(viewer.Send) > 0
	}, testEventuallyTimeout, testPollInterval)

	ev := recv(t, viewer)
	assert.Equal(t, EventLikeCountChanged, ev.Type)
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishPost(context.Background(), "p1", "x"))
	assert.NoError(t, n.PublishBroadcast(context.Background(), "x"))
	assert.NoError(t, n.StartSubscriber(context.Background(), func(string, string) {}))
}

func TestPostChannel(t *testing.T) {
	assert.Equal(t, "qawala:events:post:abc", PostChannel("abc"))
	id, ok := PostIDFromChannel(PostChannel("abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
	_, ok = PostIDFromChannel(BroadcastChannel)
	assert.False(t, ok)
}
