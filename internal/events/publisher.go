// Package events publishes content change notifications to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/retry"
)

// ContentChanged is the payload published after the content tree changed.
type ContentChanged struct {
	Fingerprint string    `json:"fingerprint"`
	ChangedAt   time.Time `json:"changed_at"`
}

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher sends ContentChanged events on a fixed subject.
type NATSPublisher struct {
	conn    conn
	subject string
	policy  retry.Policy
	logger  *slog.Logger
}

// NewNATSPublisher connects to url. Failed publications are retried
// according to policy.
func NewNATSPublisher(url, subject string, policy retry.Policy, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("docpages"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return newPublisher(nc, subject, policy, logger), nil
}

func newPublisher(c conn, subject string, policy retry.Policy, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: c, subject: subject, policy: policy, logger: logger}
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string { return p.subject }

// Publish sends ev and waits for the server to acknowledge the flush,
// retrying per the publisher's policy until ctx ends.
func (p *NATSPublisher) Publish(ctx context.Context, ev ContentChanged) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	attempt := 0
	err = p.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			p.logger.Debug("Retrying content change publication", slog.Int("attempt", attempt))
		}
		return p.send(ctx, data)
	})
	if err != nil {
		return err
	}
	p.logger.Debug("Published content change", slog.String("subject", p.subject), slog.String("fingerprint", ev.Fingerprint))
	return nil
}

func (p *NATSPublisher) send(ctx context.Context, data []byte) error {
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	return nil
}

// Close closes the connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}
