// Package queuetest provides an in-memory stand-in for an AMQP channel.
package queuetest

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Declaration records one QueueDeclare call.
type Declaration struct {
	Name       string
	Durable    bool
	AutoDelete bool
	Exclusive  bool
}

// Message records one PublishWithContext call.
type Message struct {
	Exchange   string
	RoutingKey string
	Publishing amqp.Publishing
}

// Channel records declarations and publishes. Set DeclareErr or PublishErr to make
// the corresponding call fail. A non-nil Hold makes every publish wait until Hold is
// closed, ignoring its context the way a broker under flow control does.
type Channel struct {
	mu           sync.Mutex
	declarations []Declaration
	messages     []Message
	closed       bool

	DeclareErr error
	PublishErr error
	Hold       chan struct{}
}

func (c *Channel) QueueDeclare(name string, durable, autoDelete, exclusive, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DeclareErr != nil {
		return amqp.Queue{}, c.DeclareErr
	}
	c.declarations = append(c.declarations, Declaration{Name: name, Durable: durable, AutoDelete: autoDelete, Exclusive: exclusive})
	return amqp.Queue{Name: name}, nil
}

func (c *Channel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.Hold != nil {
		<-c.Hold
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PublishErr != nil {
		return c.PublishErr
	}
	c.messages = append(c.messages, Message{Exchange: exchange, RoutingKey: key, Publishing: msg})
	return nil
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return amqp.ErrClosed
	}
	c.closed = true
	return nil
}

// Declarations returns every recorded QueueDeclare call.
func (c *Channel) Declarations() []Declaration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Declaration(nil), c.declarations...)
}

// Messages returns every recorded publish.
func (c *Channel) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}
