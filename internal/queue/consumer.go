package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartActivityConsumer connects to RabbitMQ, declares the activity queue
// (durable) and appends every message to logPath in a single-line,
// human-friendly format.  It runs a reconnect loop with exponential
// backoff and returns only when ctx is cancelled.  Messages that cannot be
// processed are rejected without requeue so the loop keeps moving.
func StartActivityConsumer(ctx context.Context, url, logPath string) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			slog.Warn("activity consumer: failed to dial broker",
				slog.String("error", err.Error()), slog.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, logPath)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("activity consumer: consume loop ended, reconnecting", slog.String("error", err.Error()))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

// sleep waits for d and reports false if ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		slog.Warn("activity consumer: set QoS failed", slog.String("error", err.Error()))
	}

	if _, err := ch.QueueDeclare(ActivityQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, ActivityQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, logPath); err != nil {
			slog.Error("activity consumer: handle message failed", slog.String("error", err.Error()))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, logPath string) error {
	var ev ActivityEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	// Ensure logs directory exists
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatLine renders ev as one log line; zero-valued fields are omitted.
func formatLine(ev ActivityEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | user_id=%d", ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.UserID)
	if ev.ProjectID != 0 {
		fmt.Fprintf(&b, " | project_id=%d", ev.ProjectID)
	}
	if ev.TaskID != 0 {
		fmt.Fprintf(&b, " | task_id=%d", ev.TaskID)
	}
	if ev.Title != "" {
		fmt.Fprintf(&b, " | title=%q", ev.Title)
	}
	if ev.Status != "" {
		fmt.Fprintf(&b, " | status=%s", ev.Status)
	}
	b.WriteByte('\n')
	return b.String()
}
