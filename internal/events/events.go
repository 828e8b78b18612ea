package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types
const (
	PostCreated    = "post.created"
	PostUpdated    = "post.updated"
	PostDeleted    = "post.deleted"
	CommentCreated = "comment.created"
	VoteCast       = "vote.cast"
)

// Event describes one forum mutation.
type Event struct {
	Type       string    `json:"type"`
	ActorID    uint64    `json:"actor_id"`
	PostID     uint64    `json:"post_id"`
	CommentID  uint64    `json:"comment_id,omitempty"`
	Subgroup   string    `json:"subgroup,omitempty"`
	Value      int       `json:"value,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events to whoever is listening.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close()                               {}

// NATSPublisher publishes events as JSON on "<prefix>.<type>" subjects.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("forum"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := p.conn.Publish(p.Subject(event.Type), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
