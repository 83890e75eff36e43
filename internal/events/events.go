// Package events publishes workflow lifecycle events over NATS JetStream so
// downstream tooling (dashboards, audit) can follow generation activity.
// Publishing is best-effort and the publisher constructs disabled when NATS
// is not configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/presswire-ai/presswire/internal/config"
)

const (
	StreamEvents = "PRESSWIRE_EVENTS"

	SubjectCommentGenerated = "presswire.events.comment.generated"
	SubjectCommentFailed    = "presswire.events.comment.failed"
)

// CommentEvent is the payload published after each generation attempt.
type CommentEvent struct {
	ID          uuid.UUID `json:"id"`
	Executive   string    `json:"executive"`
	MediaOutlet string    `json:"media_outlet"`
	Question    string    `json:"question"`
	Passed      bool      `json:"passed"`
	Evaluated   bool      `json:"evaluated"`
	Overall     float64   `json:"overall"`
	Degraded    []string  `json:"degraded,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher emits workflow events.
type Publisher struct {
	enabled bool
	conn    *nats.Conn
	js      jetstream.JetStream
}

// NewPublisher connects to NATS and ensures the events stream exists. With
// Enabled=false or an empty URL it constructs disabled instead of failing.
func NewPublisher(ctx context.Context, cfg config.NATSConfig) (*Publisher, error) {
	if !cfg.Enabled || cfg.URL == "" {
		slog.Info("event publishing disabled")
		return &Publisher{}, nil
	}

	nc, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamEvents,
		Subjects:  []string{"presswire.events.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensuring events stream: %w", err)
	}

	slog.Info("connected to NATS", "url", cfg.URL)
	return &Publisher{enabled: true, conn: nc, js: js}, nil
}

func (p *Publisher) Enabled() bool { return p.enabled }

// Healthy reports whether the NATS connection is active. Disabled publishers
// are considered healthy.
func (p *Publisher) Healthy() bool {
	return !p.enabled || p.conn.IsConnected()
}

// PublishComment emits the event for one finished (or failed) generation.
// Errors are logged, never returned up the request path.
func (p *Publisher) PublishComment(ctx context.Context, ev CommentEvent) {
	if !p.enabled {
		return
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	subject := SubjectCommentGenerated
	if ev.Error != "" {
		subject = SubjectCommentFailed
	}

	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("encoding comment event", "error", err)
		return
	}
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		slog.Warn("publishing comment event", "subject", subject, "error", err)
	}
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if !p.enabled {
		return
	}
	if err := p.conn.Drain(); err != nil {
		slog.Warn("draining NATS connection", "error", err)
	}
}
