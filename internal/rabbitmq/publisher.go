// Package rabbitmq puts confirmed bookings on a durable queue for
// downstream mailers.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ms-booking/internal/config"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends BookingConfirmedEvent messages. amqp channels are not safe
// for concurrent publishing, so every publish holds mu.
type Publisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     Channel
	queue  string
	logger *logger.Logger
}

// Dial connects and declares the queue.
func Dial(cfg config.RabbitMQConfig, log *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	p, err := NewPublisher(ch, cfg.Queue, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewPublisher(ch Channel, queue string, log *logger.Logger) (*Publisher, error) {
	// durable, so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("rabbitmq queue declare %s: %w", queue, err)
	}
	return &Publisher{ch: ch, queue: queue, logger: log}, nil
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", event.BookingID, err)
	}
	p.logger.Info("RABBITMQ", fmt.Sprintf("Queued booking %s on %s", event.BookingID, p.queue))
	return nil
}

// PublishSeatStatus is a no-op; only confirmed bookings go to the queue.
func (p *Publisher) PublishSeatStatus(context.Context, models.SeatStatusChangeEvent) error {
	return nil
}

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
