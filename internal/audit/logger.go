package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dangerclosesec/peloton/internal/model"
)

// Entry is what forwarders receive once an operation has committed.
type Entry struct {
	Event   *model.ActivityEvent
	Changes []model.RelationChange
}

// Forwarder receives committed activity. Forwarders run after commit, so an
// error never undoes the operation that produced the entry.
type Forwarder interface {
	Forward(ctx context.Context, entry Entry) error
}

// ForwarderFunc adapts a function to Forwarder
type ForwarderFunc func(ctx context.Context, entry Entry) error

// Forward implements Forwarder.Forward
func (f ForwarderFunc) Forward(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}

// NoOpForwarder is a forwarder that does nothing
type NoOpForwarder struct{}

// Forward implements Forwarder.Forward
func (NoOpForwarder) Forward(ctx context.Context, entry Entry) error {
	return nil
}

// LogForwarder writes each entry to a structured logger
type LogForwarder struct {
	Logger *slog.Logger
}

// Forward implements Forwarder.Forward
func (f LogForwarder) Forward(ctx context.Context, entry Entry) error {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := entry.Event
	logger.InfoContext(ctx, "activity",
		"operation", e.Operation,
		"outcome", e.Outcome,
		"actorID", e.ActorID,
		"organizationID", e.OrganizationID,
		"targetRiderID", e.TargetRiderID,
		"relations", len(entry.Changes),
		"requestID", e.RequestID,
	)
	return nil
}

// Multi fans an entry out to every forwarder and joins their errors.
type Multi []Forwarder

// Forward implements Forwarder.Forward
func (m Multi) Forward(ctx context.Context, entry Entry) error {
	var errs []error
	for _, f := range m {
		if err := f.Forward(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
