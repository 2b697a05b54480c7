package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ms-booking/internal/config"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type BookingHandler func(ctx context.Context, event models.BookingConfirmedEvent) error

// Consumer reads booking confirmations for the notifier.
type Consumer struct {
	Reader MessageReader
	Logger *logger.Logger
}

func NewConsumer(cfg config.KafkaConfig, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topics.BookingConfirmed,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{Reader: reader, Logger: log}
}

// Run handles messages until ctx is cancelled. Every fetched message is
// committed after handling; unreadable payloads and handler failures are
// logged and skipped.
func (c *Consumer) Run(ctx context.Context, handle BookingHandler) error {
	c.Logger.Info("KAFKA", "Booking consumer started")
	for {
		msg, err := c.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.Logger.Info("KAFKA", "Booking consumer stopped")
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		var event models.BookingConfirmedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.Logger.Warn("KAFKA", fmt.Sprintf("Skipping unreadable message at offset %d: %v", msg.Offset, err))
		} else if err := handle(ctx, event); err != nil {
			c.Logger.Error("KAFKA", fmt.Sprintf("Handler failed for booking %s: %v", event.BookingID, err))
		} else {
			c.Logger.LogKafka("CONSUMED", msg.Topic, fmt.Sprintf("booking=%s", event.BookingID))
		}

		if err := c.Reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.Logger.Warn("KAFKA", fmt.Sprintf("Commit failed at offset %d: %v", msg.Offset, err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.Reader.Close()
}
