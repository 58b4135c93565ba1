// internal/adapter/events/nats.go

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"redditwatch/internal/domain/post"
)

// Config contains configuration for the NATS connection
type Config struct {
	URL            string
	Topic          string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// MatchEvent is the payload published for every monitor match
type MatchEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	MatchedAt time.Time `json:"matched_at"`
	Post      post.Post `json:"post"`
}

// Publisher is the subset of *nats.Conn used by the notifier
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Notifier publishes monitor matches to NATS
type Notifier struct {
	conn    Publisher
	subject string
	now     func() time.Time
}

// Connect opens a NATS connection with logging handlers
func Connect(cfg Config, log zerolog.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("redditwatch"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// NewNotifier creates a notifier publishing to "<topic>.matched"
func NewNotifier(conn Publisher, topic string) *Notifier {
	return &Notifier{
		conn:    conn,
		subject: fmt.Sprintf("%s.matched", topic),
		now:     time.Now,
	}
}

// Name identifies the notifier in logs
func (n *Notifier) Name() string {
	return "nats"
}

// Subject returns the subject matches are published on
func (n *Notifier) Subject() string {
	return n.subject
}

// Notify publishes a match event
func (n *Notifier) Notify(ctx context.Context, p post.Post) error {
	data, err := json.Marshal(MatchEvent{
		ID:        uuid.NewString(),
		Type:      "match",
		MatchedAt: n.now().UTC(),
		Post:      p,
	})
	if err != nil {
		return fmt.Errorf("error marshaling match event: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("error publishing to %s: %w", n.subject, err)
	}
	return nil
}
