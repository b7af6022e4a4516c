package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/taskboard/internal/queue"
)

const publishTimeout = 2 * time.Second

// publish sends ev on a context detached from the request so that a
// finished response does not cancel it.  Failures are only logged.
func publish(ctx context.Context, p queue.Publisher, ev queue.ActivityEvent) {
	ev.OccurredAt = time.Now().UTC()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish activity event",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
	}
}

func strPtr(s string) *string { return &s }

// optional returns nil for an empty string.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
