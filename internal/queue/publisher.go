package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends activity events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev ActivityEvent) error
}

// NopPublisher drops every event.  It is used when the activity queue is
// disabled and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ActivityEvent) error { return nil }

// handshakeTimeout caps connect plus AMQP handshake when ctx has no deadline.
const handshakeTimeout = 5 * time.Second

// AMQPPublisher publishes events to ActivityQueueName as persistent JSON
// messages.  The connection is opened on first use and re-opened after a
// failure.  Every step, including waiting for another publish, is bounded
// by the caller's context.
type AMQPPublisher struct {
	url string

	lock chan struct{} // one-slot semaphore guarding conn and ch
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url, lock: make(chan struct{}, 1)}
}

func (p *AMQPPublisher) acquire(ctx context.Context) error {
	select {
	case p.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *AMQPPublisher) release() { <-p.lock }

// dialer returns an amqp dial func whose TCP connect honours ctx and whose
// socket deadline, which amqp091 clears once the handshake completes, ends
// no later than ctx.
func dialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline := time.Now().Add(handshakeTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		dctx, cancel := context.WithDeadline(ctx, deadline)
		defer cancel()

		var d net.Dialer
		conn, err := d.DialContext(dctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

// channel returns an open channel with the queue declared.  Callers hold
// the lock.
func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      dialer(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		ActivityQueueName, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Publish sends ev.  Errors are returned for the caller to log; a failed
// publish drops the connection so the next call redials.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ActivityEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.acquire(ctx); err != nil {
		return fmt.Errorf("wait for publisher: %w", err)
	}
	defer p.release()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                // default exchange
		ActivityQueueName, // routing key = queue name
		false,             // mandatory
		false,             // immediate
		pub,
	); err != nil {
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.lock <- struct{}{}
	defer p.release()
	p.reset()
	return nil
}

var (
	_ Publisher = NopPublisher{}
	_ Publisher = (*AMQPPublisher)(nil)
	_ Publisher = (*BufferedPublisher)(nil)
)
