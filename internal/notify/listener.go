// Package notify follows the activity stream Postgres publishes on commit.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/lib/pq"
)

const pingInterval = 90 * time.Second

// Listener delivers activity events as they commit.
type Listener struct {
	dsn          string
	channel      string
	logger       *slog.Logger
	minReconnect time.Duration
	maxReconnect time.Duration
}

func NewListener(dsn string, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		dsn:          dsn,
		channel:      repository.ActivityChannel,
		logger:       logger,
		minReconnect: 10 * time.Second,
		maxReconnect: time.Minute,
	}
}

// Listen calls fn for every event until ctx is done or fn fails. Events
// published while the connection is down are lost.
func (l *Listener) Listen(ctx context.Context, fn func(model.ActivityEvent) error) error {
	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.Warn("activity listener", "event", ev, "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return fmt.Errorf("listening on %s: %w", l.channel, err)
	}
	l.logger.Info("listening for activity", "channel", l.channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect
			if n == nil {
				continue
			}
			event, err := Decode([]byte(n.Extra))
			if err != nil {
				l.logger.Warn("skipping malformed activity payload", "error", err)
				continue
			}
			if err := fn(event); err != nil {
				return err
			}
		case <-time.After(pingInterval):
			if err := listener.Ping(); err != nil {
				l.logger.Warn("activity listener ping failed", "error", err)
			}
		}
	}
}

// Decode parses a notification payload.
func Decode(payload []byte) (model.ActivityEvent, error) {
	var event model.ActivityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("decoding activity event: %w", err)
	}
	if event.Operation == "" {
		return event, fmt.Errorf("decoding activity event: missing operation")
	}
	return event, nil
}
