// Package kafka streams seat and booking events to Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-booking/internal/config"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Topics config.TopicConfig
	Logger *logger.Logger
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{Writer: writer, Topics: cfg.Topics, Logger: log}
}

// Publish writes one JSON message. Messages with the same key land on the
// same partition, which keeps a show's events in order.
func (p *Producer) Publish(ctx context.Context, topic, key string, value any) error {
	msgBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}

	p.Logger.Debug("KAFKA", fmt.Sprintf("Publishing to %s: %s", topic, string(msgBytes)))

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: msgBytes,
	})
	if err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

// PublishSeatStatus is keyed by show id.
func (p *Producer) PublishSeatStatus(ctx context.Context, event models.SeatStatusChangeEvent) error {
	if err := p.Publish(ctx, p.Topics.SeatStatus, event.ShowID, event); err != nil {
		return err
	}
	p.Logger.LogKafka("PUBLISHED", p.Topics.SeatStatus, fmt.Sprintf("show=%s status=%s seats=%v", event.ShowID, event.Status, event.SeatIDs))
	return nil
}

// PublishBookingConfirmed is keyed by booking id.
func (p *Producer) PublishBookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error {
	if err := p.Publish(ctx, p.Topics.BookingConfirmed, event.BookingID, event); err != nil {
		return err
	}
	p.Logger.LogKafka("PUBLISHED", p.Topics.BookingConfirmed, fmt.Sprintf("booking=%s user=%s", event.BookingID, event.UserID))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
