// server/internal/queue/publisher.go
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"equipment-dispatch-api-server/config"
	"equipment-dispatch-api-server/internal/metrics"
	"equipment-dispatch-api-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	DefaultQueue   = "logistics_queue"
	DefaultTimeout = 5 * time.Second
)

// ErrUnavailable is returned by Publish when the broker connection is down.
var ErrUnavailable = errors.New("message broker is not connected")

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publishes dispatch events to a durable RabbitMQ queue. The connection is
// dialed once by Connect and shared by every request; it is not re-dialed when lost.
type Publisher struct {
	uri     amqp.URI
	queue   string
	timeout time.Duration
	logger  *zap.Logger

	conn *amqp.Connection
	ch   Channel

	// one publish at a time on the shared channel; a slot, not a mutex, so a
	// caller can give up waiting for it
	pubSlot chan struct{}

	mu        sync.RWMutex
	connected bool
	blocked   bool
	lastErr   error
}

// NewPublisher prepares a publisher for the broker described by cfg. Call Connect to dial.
func NewPublisher(cfg config.RabbitMQConfig, logger *zap.Logger) *Publisher {
	p := &Publisher{
		uri: amqp.URI{
			Scheme:   "amqp",
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.User,
			Password: cfg.Pass,
			Vhost:    cfg.VHost,
		},
		queue:   cfg.Queue,
		timeout: cfg.Timeout,
		logger:  logger.Named("queue"),
		pubSlot: make(chan struct{}, 1),
	}
	if p.queue == "" {
		p.queue = DefaultQueue
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	if p.uri.Vhost == "" {
		p.uri.Vhost = "/"
	}
	return p
}

// NewWithChannel builds a publisher over an already open channel and declares its queue.
func NewWithChannel(ch Channel, cfg config.RabbitMQConfig, logger *zap.Logger) (*Publisher, error) {
	p := NewPublisher(cfg, logger)
	p.ch = ch
	if err := p.EnsureQueue(p.queue); err != nil {
		p.setStatus(false, err)
		return p, err
	}
	p.setStatus(true, nil)
	return p, nil
}

func (p *Publisher) addr() string {
	return net.JoinHostPort(p.uri.Host, strconv.Itoa(p.uri.Port))
}

// Connect dials the broker, opens a channel and declares the queue. Failure leaves
// the publisher unavailable; every later Publish fails fast with ErrUnavailable.
func (p *Publisher) Connect() error {
	conn, err := amqp.DialConfig(p.uri.String(), amqp.Config{
		Dial:      amqp.DefaultDial(p.timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return p.fail(fmt.Errorf("failed to dial rabbitmq: %w", err))
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return p.fail(fmt.Errorf("failed to open channel: %w", err))
	}

	p.ch = ch
	if err := p.EnsureQueue(p.queue); err != nil {
		p.ch = nil
		conn.Close()
		return p.fail(err)
	}
	p.conn = conn

	go p.watch("connection", conn.NotifyClose(make(chan *amqp.Error, 1)))
	go p.watch("channel", ch.NotifyClose(make(chan *amqp.Error, 1)))
	go p.watchBlocked(conn.NotifyBlocked(make(chan amqp.Blocking, 1)))

	p.setStatus(true, nil)
	p.logger.Info("connected to rabbitmq", zap.String("addr", p.addr()), zap.String("queue", p.queue))
	return nil
}

func (p *Publisher) fail(err error) error {
	p.setStatus(false, err)
	p.logger.Error("rabbitmq unavailable", zap.String("addr", p.addr()), zap.Error(err))
	return err
}

// watch marks the publisher unavailable when the broker drops the connection or
// the channel. what names the one being watched.
func (p *Publisher) watch(what string, closed <-chan *amqp.Error) {
	amqpErr, ok := <-closed
	if !ok || amqpErr == nil {
		return
	}
	p.setStatus(false, amqpErr)
	p.logger.Error("rabbitmq "+what+" lost", zap.Error(amqpErr))
}

// watchBlocked follows connection.blocked/unblocked. While the broker is blocking
// publishers (memory or disk alarm) Publish fails fast with ErrUnavailable.
func (p *Publisher) watchBlocked(blockings <-chan amqp.Blocking) {
	for b := range blockings {
		p.mu.Lock()
		p.blocked = b.Active
		p.mu.Unlock()
		if b.Active {
			p.logger.Warn("rabbitmq blocked publishing", zap.String("reason", b.Reason))
		} else {
			p.logger.Info("rabbitmq unblocked publishing")
		}
	}
}

func (p *Publisher) setStatus(connected bool, err error) {
	p.mu.Lock()
	p.connected = connected
	p.lastErr = err
	p.mu.Unlock()
	metrics.SetConnected(metrics.BackendQueue, connected)
}

// EnsureQueue declares name as durable, non-exclusive and not auto-deleted.
// Redeclaring with the same arguments is a no-op on the broker.
func (p *Publisher) EnsureQueue(name string) error {
	if p.ch == nil {
		return ErrUnavailable
	}
	if _, err := p.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Available reports whether publishing can be attempted: connected and not
// blocked by the broker.
func (p *Publisher) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && !p.blocked
}

// Connected is the last known connection state.
func (p *Publisher) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// LastError is the error that made the publisher unavailable, if any.
func (p *Publisher) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// Queue is the name of the queue Publish targets.
func (p *Publisher) Queue() string { return p.queue }

// Publish sends event to the publisher's queue.
func (p *Publisher) Publish(ctx context.Context, event models.DispatchEvent) error {
	return p.PublishTo(ctx, event, p.queue)
}

// PublishTo sends event as a persistent JSON message to queueName through the
// default exchange. It does not wait for any consumer.
//
// The wait is bounded by the publisher timeout, not by ctx: the client library
// ignores the context and a blocked broker holds the socket write indefinitely.
// A publish that times out keeps running in the background and holds the slot
// until it returns, so later calls time out too rather than piling up.
func (p *Publisher) PublishTo(ctx context.Context, event models.DispatchEvent, queueName string) error {
	if !p.Available() {
		return ErrUnavailable
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode dispatch event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	select {
	case p.pubSlot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("failed to publish to %s: waiting for channel: %w", queueName, ctx.Err())
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-p.pubSlot }()
		done <- p.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    time.Now(),
			Body:         body,
		})
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queueName, err)
	}
	return nil
}

// Close shuts the channel and the connection down.
func (p *Publisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	p.setStatus(false, nil)
	return errors.Join(errs...)
}
