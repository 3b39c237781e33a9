// Package events publishes domain events to Kafka for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"qawala/internal/observability"

	"github.com/google/uuid"
	kgo "github.com/segmentio/kafka-go"
)

// Event types.
const (
	TypeLikeToggled       = "like.toggled"
	TypeEnrollmentCreated = "enrollment.created"
)

// Event is the JSON envelope written to the topic.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// LikeToggled is the data of a like.toggled event.
type LikeToggled struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
	Liked  bool   `json:"liked"`
	Count  int64  `json:"count"`
}

// EnrollmentCreated is the data of an enrollment.created event.
type EnrollmentCreated struct {
	CourseSlug string `json:"course_slug"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(eventType, key string, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher sends domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by Event.Key so per-post ordering is kept.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher creates an async writer for a comma-separated broker list.
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	addrs := make([]string, 0)
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	w := &kgo.Writer{
		Addr:         kgo.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kgo.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kgo.RequireOne,
		Async:        true,
	}
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		observability.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		return err
	}
	err = p.w.WriteMessages(ctx, kgo.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kgo.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.EventsPublished.WithLabelValues(event.Type, result).Inc()
	return err
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// New returns a Kafka publisher, or a NopPublisher when brokers is empty.
func New(brokers, topic string) Publisher {
	if strings.TrimSpace(brokers) == "" {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
