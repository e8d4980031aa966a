package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	"github.com/nats-io/nats.go"
)

var _ Broadcaster = (*NATS)(nil)

// NATS publishes JSON encoded events on "<prefix>.<subject>".
type NATS struct {
	nc     *nats.Conn
	prefix string
	log    *logger.Logger
}

// NewNATS connects to the configured NATS server.
func NewNATS(cfg *config.NATSConfig, log *logger.Logger) (*NATS, error) {
	if cfg == nil {
		return nil, errors.New("nats config is required")
	}
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	opts := []nats.Option{
		nats.Name("gnosis-pay-indexer"),
		nats.Timeout(cfg.ConnectTimeout.Duration),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second), //nolint:mnd
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnw("disconnected from nats", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infow("reconnected to nats", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Infow("connected to nats", "url", cfg.URL, "subject_prefix", cfg.SubjectPrefix)

	return &NATS{nc: nc, prefix: cfg.SubjectPrefix, log: log}, nil
}

// Subject returns the full subject name an event is published on.
func (n *NATS) Subject(subject string) string {
	if n.prefix == "" {
		return subject
	}
	return n.prefix + "." + subject
}

// Publish encodes payload as JSON and publishes it without waiting for subscribers.
func (n *NATS) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		PublishFailedInc(subject)
		return fmt.Errorf("failed to encode %s event: %w", subject, err)
	}

	if err := n.nc.Publish(n.Subject(subject), data); err != nil {
		PublishFailedInc(subject)
		return fmt.Errorf("failed to publish %s event: %w", subject, err)
	}

	PublishedInc(subject)
	return nil
}

// Ready reports whether the connection is established.
func (n *NATS) Ready() bool {
	return n.nc != nil && n.nc.Status() == nats.CONNECTED
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() error {
	if n.nc == nil || n.nc.IsClosed() {
		return nil
	}

	if err := n.nc.Drain(); err != nil {
		n.nc.Close()
		return fmt.Errorf("failed to drain connection to NATS: %w", err)
	}

	n.log.Info("nats connection closed")
	return nil
}
