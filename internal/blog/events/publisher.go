package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/blogcraftai/blogcraft-backend/config"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
	"github.com/blogcraftai/blogcraft-backend/internal/metrics"
)

const (
	TypePostPublished  = "post.published"
	TypeCommentCreated = "comment.created"
	TypeReactionSet    = "reaction.set"
)

// Event is one domain event. Key selects the Kafka partition so events for
// the same post stay ordered.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"-"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type PostPublished struct {
	PostID      int64     `json:"post_id"`
	Slug        string    `json:"slug"`
	AuthorUID   string    `json:"author_uid"`
	PublishedAt time.Time `json:"published_at"`
}

type CommentCreated struct {
	CommentID int64  `json:"comment_id"`
	PostID    int64  `json:"post_id"`
	PostSlug  string `json:"post_slug"`
	AuthorUID string `json:"author_uid"`
	ParentID  *int64 `json:"parent_id"`
	IsPublic  bool   `json:"is_public"`
}

type ReactionSet struct {
	ReactionID int64  `json:"reaction_id"`
	PostID     int64  `json:"post_id"`
	PostSlug   string `json:"post_slug"`
	UserUID    string `json:"user_uid"`
	Reaction   string `json:"reaction"`
}

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NoopPublisher drops every event. It is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON-encoded events to a single topic.
type KafkaPublisher struct {
	writer  MessageWriter
	metrics *metrics.Metrics
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
}

func NewKafkaPublisher(w MessageWriter, m *metrics.Metrics) *KafkaPublisher {
	return &KafkaPublisher{writer: w, metrics: m}
}

// New returns a Kafka publisher when brokers are configured and a no-op one
// otherwise.
func New(cfg config.KafkaConfig, m *metrics.Metrics) Publisher {
	if len(cfg.Brokers) == 0 {
		logging.Log.Info("KAFKA_BROKERS not set; domain events are disabled")
		return NoopPublisher{}
	}
	return NewKafkaPublisher(NewKafkaWriter(cfg), m)
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		p.metrics.RecordEvent(ev.Type, err)
		return fmt.Errorf("marshaling event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	if rid := logging.RequestID(ctx); rid != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "request_id", Value: []byte(rid)})
	}

	err = p.writer.WriteMessages(ctx, msg)
	p.metrics.RecordEvent(ev.Type, err)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", ev.Type, err)
	}
	logging.NewLogger(ctx).LogDebugf("event_publish", "published %s key=%s size=%d", ev.Type, ev.Key, len(value))
	return nil
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
