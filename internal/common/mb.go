package common

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Exchange string

type Queue string

type BindingKey string

type MessageProducer interface {
	Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error
}

type MessageConsumer interface {
	Consume(key BindingKey, exchange Exchange, queue Queue) (<-chan amqp.Delivery, error)
}

const (
	BlogExchange     Exchange   = "blog_exchange"
	BlogCreatedQueue Queue      = "blog_created_queue"
	BlogCreatedKey   BindingKey = "blog.created"
	BlogUpdatedKey   BindingKey = "blog.updated"
	BlogDeletedKey   BindingKey = "blog.deleted"
)

// consumerPrefetch bounds the unacknowledged deliveries held by one consumer.
const consumerPrefetch = 10

// Binding routes messages published on Exchange with Key into Queue.
type Binding struct {
	Exchange Exchange
	Queue    Queue
	Key      BindingKey
}

// blogBindings is every queue the application reads blog events from.
var blogBindings = []Binding{
	{Exchange: BlogExchange, Queue: BlogCreatedQueue, Key: BlogCreatedKey},
}

// MessageBroker publishes on one channel and consumes on another.
type MessageBroker struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	pub     *amqp.Channel
	consume *amqp.Channel
}

func NewMessageBroker(uri string) (*MessageBroker, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("could not connect to AMQP: %w", err)
	}

	mb := &MessageBroker{conn: conn}

	mb.pub, err = conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open publish channel: %w", err)
	}

	mb.consume, err = conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open consume channel: %w", err)
	}

	err = mb.consume.Qos(consumerPrefetch, 0, false)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not set prefetch: %w", err)
	}

	return mb, nil
}

func AMQPURI(host, port, user, password string) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", user, password, host, port)
}

// Close closes both channels and the connection, returning every error encountered.
func (mb *MessageBroker) Close() error {
	var errs []error
	for _, ch := range []*amqp.Channel{mb.pub, mb.consume} {
		if ch != nil {
			errs = append(errs, ch.Close())
		}
	}
	errs = append(errs, mb.conn.Close())

	return errors.Join(errs...)
}

// SetupBlogExchange declares the durable topic exchange for blog events and the queues bound to it.
func SetupBlogExchange(mb *MessageBroker) error {
	err := mb.pub.ExchangeDeclare(string(BlogExchange), amqp.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("could not declare %s: %w", BlogExchange, err)
	}

	return mb.Declare(blogBindings...)
}

// Declare creates each durable queue and binds it to its exchange.
func (mb *MessageBroker) Declare(bindings ...Binding) error {
	for _, b := range bindings {
		_, err := mb.pub.QueueDeclare(string(b.Queue), true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("could not declare %s: %w", b.Queue, err)
		}

		err = mb.pub.QueueBind(string(b.Queue), string(b.Key), string(b.Exchange), false, nil)
		if err != nil {
			return fmt.Errorf("could not bind %s to %s: %w", b.Queue, b.Key, err)
		}
	}

	return nil
}

// Publish sends a persistent JSON message. amqp channels are not safe for concurrent publishing.
func (mb *MessageBroker) Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	err := mb.pub.PublishWithContext(ctx, string(exchange), string(key), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         msg,
	})
	if err != nil {
		return fmt.Errorf("could not publish %s: %w", key, err)
	}

	return nil
}

// Consume starts a manually acknowledged consumer on queue, tagged with key.
func (mb *MessageBroker) Consume(key BindingKey, exchange Exchange, queue Queue) (<-chan amqp.Delivery, error) {
	msgs, err := mb.consume.Consume(string(queue), string(key), false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("could not consume from %s on %s: %w", queue, exchange, err)
	}

	return msgs, nil
}
