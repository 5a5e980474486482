package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	ExchangeName = "bookings"
	ExchangeType = "topic"

	dialAttempts   = 5
	redialInterval = 2 * time.Second
)

var ErrPublisherClosed = errors.New("amqp publisher is closed")

// AMQPPublisher publishes booking events to a topic exchange. When the broker
// drops the connection it is re-dialed in the background, and a publish that
// finds no live channel re-dials once before giving up.
type AMQPPublisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
	log    logrus.FieldLogger

	// connect opens a connection with the exchange declared.
	connect func() (*amqp.Connection, *amqp.Channel, error)
}

// Dial connects to the broker and declares the bookings exchange. The broker
// may start after this service, so the dial is retried a few times.
func Dial(url string, log logrus.FieldLogger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{
		log:     log,
		connect: func() (*amqp.Connection, *amqp.Channel, error) { return open(url) },
	}

	var err error
	for i := 0; i < dialAttempts; i++ {
		p.mu.Lock()
		err = p.reconnectLocked()
		p.mu.Unlock()
		if err == nil {
			return p, nil
		}
		log.WithError(err).WithField("attempt", i+1).Warn("failed to connect to RabbitMQ")
		time.Sleep(redialInterval)
	}
	return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
}

func open(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		ExchangeName, // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}
	return conn, ch, nil
}

// reconnectLocked replaces the connection and starts watching it. p.mu must be held.
func (p *AMQPPublisher) reconnectLocked() error {
	if p.closed {
		return ErrPublisherClosed
	}
	conn, ch, err := p.connect()
	if err != nil {
		return err
	}
	p.conn, p.ch = conn, ch
	go p.watch(conn, conn.NotifyClose(make(chan *amqp.Error, 1)))
	return nil
}

// watch re-dials after an unexpected close of conn. A nil error on the
// channel means the close was requested and nothing is done.
func (p *AMQPPublisher) watch(conn *amqp.Connection, closes <-chan *amqp.Error) {
	amqpErr, ok := <-closes
	if !ok || amqpErr == nil {
		return
	}
	p.log.WithError(amqpErr).Warn("RabbitMQ connection lost; reconnecting")

	for {
		p.mu.Lock()
		if p.closed || p.conn != conn {
			// closed, or a publish already re-dialed
			p.mu.Unlock()
			return
		}
		err := p.reconnectLocked()
		p.mu.Unlock()
		if err == nil {
			p.log.Info("RabbitMQ connection restored")
			return
		}
		p.log.WithError(err).Warn("RabbitMQ reconnect failed")
		time.Sleep(redialInterval)
	}
}

func (p *AMQPPublisher) liveLocked() bool {
	return p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed()
}

// Publish sends the event with its type as routing key. amqp channels are
// not safe for concurrent publishing, hence the mutex.
func (p *AMQPPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("could not marshal booking event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if !p.liveLocked() {
		if err := p.reconnectLocked(); err != nil {
			return fmt.Errorf("rabbitmq unavailable: %w", err)
		}
	}
	return p.ch.PublishWithContext(ctx,
		ExchangeName, // exchange
		ev.Type,      // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    ev.OccurredAt,
			Type:         ev.Type,
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.conn == nil {
		return nil
	}
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}
