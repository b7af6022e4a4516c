package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrBufferFull is returned when an event is dropped because the
	// background sender is behind.
	ErrBufferFull = errors.New("activity buffer full")
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("activity publisher closed")
)

// BufferedPublisher hands events to a single background goroutine that
// forwards them to another Publisher.  Publish never waits on the broker.
type BufferedPublisher struct {
	next    Publisher
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	events chan ActivityEvent
	done   chan struct{}
}

// NewBufferedPublisher starts the sender.  Each forwarded event gets its own
// timeout.  Close must be called to stop it.
func NewBufferedPublisher(next Publisher, size int, timeout time.Duration, logger *slog.Logger) *BufferedPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	b := &BufferedPublisher{
		next:    next,
		timeout: timeout,
		logger:  logger,
		events:  make(chan ActivityEvent, size),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *BufferedPublisher) run() {
	defer close(b.done)
	for ev := range b.events {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		if err := b.next.Publish(ctx, ev); err != nil {
			b.logger.Warn("failed to forward activity event",
				slog.String("type", ev.Type),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}

// Publish enqueues ev without blocking.  ctx is not used.
func (b *BufferedPublisher) Publish(_ context.Context, ev ActivityEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrPublisherClosed
	}
	select {
	case b.events <- ev:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events and waits until the queued ones have been
// forwarded or ctx ends.
func (b *BufferedPublisher) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
