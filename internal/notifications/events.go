package notifications

import (
	"context"
	"encoding/json"
	"time"

	"qawala/internal/middleware"
	"qawala/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventLikeCountChanged = "like_count_changed"
	EventContentChanged   = "content_changed"
)

// Event is the envelope written to websocket viewers.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// LikeCountPayload is the body of a like_count_changed event. It carries the
// re-read count, never a client-computed one.
type LikeCountPayload struct {
	PostID string `json:"post_id"`
	Count  int64  `json:"count"`
}

// ContentPayload is the body of a content_changed event.
type ContentPayload struct {
	Kind   string    `json:"kind"`
	ID     string    `json:"id"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// Dispatcher routes events through Redis when available and straight to the local
// hub otherwise. Either field may be nil.
type Dispatcher struct {
	hub      *Hub
	notifier *Notifier
}

// NewDispatcher wires a Dispatcher.
func NewDispatcher(hub *Hub, notifier *Notifier) *Dispatcher {
	return &Dispatcher{hub: hub, notifier: notifier}
}

// LikeCountChanged tells viewers of postID its new count.
func (d *Dispatcher) LikeCountChanged(ctx context.Context, postID string, count int64) {
	d.publish(ctx, postID, Event{
		Type:    EventLikeCountChanged,
		Payload: LikeCountPayload{PostID: postID, Count: count},
	})
}

// ContentChanged tells every viewer that a piece of content was created, updated or deleted.
func (d *Dispatcher) ContentChanged(ctx context.Context, kind, id, action string) {
	d.publish(ctx, "", Event{
		Type:    EventContentChanged,
		Payload: ContentPayload{Kind: kind, ID: id, Action: action, At: time.Now().UTC()},
	})
}

// publish sends to postID's viewers, or to everyone when postID is empty.
func (d *Dispatcher) publish(ctx context.Context, postID string, event Event) {
	if d == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal event", "type", event.Type, "error", err)
		return
	}
	message := string(data)
	observability.WebSocketEventsTotal.WithLabelValues(event.Type).Inc()

	if d.notifier.Enabled() {
		if postID != "" {
			err = d.notifier.PublishPost(ctx, postID, message)
		} else {
			err = d.notifier.PublishBroadcast(ctx, message)
		}
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "redis publish failed, delivering locally", "type", event.Type, "error", err)
	}

	if d.hub == nil {
		return
	}
	if postID != "" {
		d.hub.BroadcastPost(postID, message)
	} else {
		d.hub.BroadcastAll(message)
	}
}
