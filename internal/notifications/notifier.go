// Package notifications fans realtime events out to websocket viewers, across
// instances through Redis pub/sub.
package notifications

import (
	"context"
	"runtime/debug"
	"strings"

	"qawala/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix     = "qawala:events:"
	postChannelPrefix = channelPrefix + "post:"

	// BroadcastChannel carries events for every connected viewer.
	BroadcastChannel = channelPrefix + "broadcast"
)

// PostChannel is the Redis channel for events about one post.
func PostChannel(postID string) string {
	return postChannelPrefix + postID
}

// PostIDFromChannel extracts the post ID from a PostChannel name.
func PostIDFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, postChannelPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(channel, postChannelPrefix)
	return id, id != ""
}

// Notifier provides helpers to publish events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every call into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether events travel through Redis.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishPost sends a payload to viewers of one post.
func (n *Notifier) PublishPost(ctx context.Context, postID, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, PostChannel(postID), payload).Err()
}

// PublishBroadcast sends a payload to all connected viewers.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// StartSubscriber subscribes to post and broadcast channels and calls onMessage for
// each incoming message until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, postChannelPrefix+"*", BroadcastChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
