package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"ms-booking/internal/config"
	"ms-booking/internal/kafka"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"

	"github.com/joho/godotenv"
)

// Booking notifier: reads confirmed bookings from Kafka and logs the
// confirmation a customer would receive.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewLogger(logger.Options{
		Service: "booking-notifier",
		Dir:     cfg.Logging.Dir,
		Level:   logger.ParseLevel(cfg.Logging.Level),
	})
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka, log)
	defer consumer.Close()

	log.Info("APP", fmt.Sprintf("Listening on %s (group %s)", cfg.Kafka.Topics.BookingConfirmed, cfg.Kafka.GroupID))
	if err := consumer.Run(ctx, notify(log)); err != nil {
		log.Fatal("KAFKA", err.Error())
	}
}

func notify(log *logger.Logger) kafka.BookingHandler {
	return func(_ context.Context, e models.BookingConfirmedEvent) error {
		log.LogBooking("CONFIRMED", e.BookingID, fmt.Sprintf("user %s, show %s, seats %s, total %.2f",
			e.UserID, e.ShowID, strings.Join(e.SeatIDs, ","), e.Total))
		return nil
	}
}
