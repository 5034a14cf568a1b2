package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher публикует доменные события в durable очереди RabbitMQ
// через default exchange (routing key = имя очереди).
type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   Channel
	log  Logger
}

// NewPublisher подключается к брокеру и объявляет очереди событий
func NewPublisher(url string, log Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}

	p, err := NewPublisherWithChannel(ch, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn

	return p, nil
}

// NewPublisherWithChannel создает Publisher поверх уже открытого канала
func NewPublisherWithChannel(ch Channel, log Logger) (*Publisher, error) {
	for _, queue := range []string{QueueBookingConfirmed, QueuePricePendingApproval} {
		if _, err := ch.QueueDeclare(
			queue, // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%w: declare queue %s: %v", ErrConnect, queue, err)
		}
	}

	return &Publisher{ch: ch, log: log}, nil
}

// PublishBookingConfirmed публикует событие в очередь booking.confirmed
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	return p.publish(ctx, QueueBookingConfirmed, event)
}

// PublishPricePendingApproval публикует событие в очередь price.pending_approval
func (p *Publisher) PublishPricePendingApproval(ctx context.Context, event PricePendingApproval) error {
	return p.publish(ctx, QueuePricePendingApproval, event)
}

func (p *Publisher) publish(ctx context.Context, queue string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrPublish, queue, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		p.log.Error("events: publish to %s failed: %v", queue, err)
		return fmt.Errorf("%w: %s: %v", ErrPublish, queue, err)
	}

	p.log.Info("events: published to %s", queue)
	return nil
}

// Close закрывает канал и соединение
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// NopPublisher используется, когда RabbitMQ отключён
type NopPublisher struct{}

// PublishBookingConfirmed ничего не делает
func (NopPublisher) PublishBookingConfirmed(context.Context, BookingConfirmed) error { return nil }

// PublishPricePendingApproval ничего не делает
func (NopPublisher) PublishPricePendingApproval(context.Context, PricePendingApproval) error {
	return nil
}
