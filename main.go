package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"ms-booking/internal/api"
	"ms-booking/internal/auth"
	"ms-booking/internal/booking"
	"ms-booking/internal/catalog"
	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/db"
	"ms-booking/internal/events"
	"ms-booking/internal/kafka"
	"ms-booking/internal/locks"
	lockredis "ms-booking/internal/locks/redis"
	"ms-booking/internal/logger"
	"ms-booking/internal/payment"
	"ms-booking/internal/rabbitmq"
	"ms-booking/internal/sse"
	"ms-booking/internal/tickets"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

// connectRedis is only needed when show guards are shared between instances.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Addr, cfg.DB))
	return client, nil
}

// setupPublishers always includes the SSE emitter. Kafka and RabbitMQ are
// added when enabled. The returned closer shuts down whatever was opened.
func setupPublishers(cfg *config.Config, emitter *sse.ShowEventEmitter, log *logger.Logger) (events.Publisher, func()) {
	publishers := events.Multi{emitter}
	var closers []func() error

	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.SeatStatus, cfg.Kafka.Topics.BookingConfirmed}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka, log)
		publishers = append(publishers, producer)
		closers = append(closers, producer.Close)
		log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Kafka.Brokers))
	}

	if cfg.RabbitMQ.Enabled {
		pub, err := rabbitmq.Dial(cfg.RabbitMQ, log)
		if err != nil {
			log.Error("RABBITMQ", fmt.Sprintf("RabbitMQ disabled: %v", err))
		} else {
			publishers = append(publishers, pub)
			closers = append(closers, pub.Close)
			log.Info("RABBITMQ", fmt.Sprintf("Publishing confirmations to queue %s", cfg.RabbitMQ.Queue))
		}
	}

	return publishers, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("APP", fmt.Sprintf("close publisher: %v", err))
			}
		}
	}
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger(logger.Options{
		Service: "booking-service",
		Dir:     cfg.Logging.Dir,
		Level:   logger.ParseLevel(cfg.Logging.Level),
	})
	defer log.Close()

	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	log.Info("APP", "Starting Booking Service initialization")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	bunDB, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, bunDB, cfg.Database.Driver, log); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
	}
	repo := db.New(bunDB)

	catalogService := catalog.NewService(repo, log)
	if cfg.Seed {
		if _, err := catalogService.Seed(ctx, catalog.SeedOptions{}); err != nil {
			log.Error("SEED", fmt.Sprintf("Seeding failed: %v", err))
		}
	}

	// --- Show guard ---
	var guard locks.Guard = locks.NewLocalGuard()
	if cfg.Locks.Guard == "redis" {
		redisClient, err := connectRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal("REDIS", err.Error())
		}
		defer redisClient.Close()
		guard = locks.Chain(guard, lockredis.NewGuard(redisClient, cfg.Locks.GuardTTL, cfg.Locks.GuardWait, log))
		log.Info("LOCK", "Show guard shared through redis")
	}

	// --- Events ---
	emitter := sse.NewShowEventEmitter()
	publisher, closePublishers := setupPublishers(cfg, emitter, log)
	defer closePublishers()

	// --- Services ---
	manager := locks.NewManager(repo, guard, publisher, log,
		locks.WithDefaultHold(cfg.Locks.DefaultHold),
		locks.WithMaxHold(cfg.Locks.MaxHold),
	)
	finalizer := booking.NewFinalizer(repo, manager, payment.NewSimulator(cfg.Payment, log), publisher, log)

	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		log.Fatal("AUTH", err.Error())
	}
	if verifier != nil {
		log.Info("AUTH", fmt.Sprintf("Booking routes protected (%s)", cfg.Auth.Mode))
	}

	handler := api.NewHandler(api.Handler{
		Locks:    manager,
		Bookings: finalizer,
		Catalog:  catalogService,
		Passes:   tickets.NewPassGenerator(cfg.Tickets.QRSecret),
		Events:   emitter,
		Verifier: verifier,
		Logger:   log,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		locks.NewSweeper(manager, cfg.Locks.SweepInterval, log).Run(ctx)
	}()

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      api.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Booking Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP", fmt.Sprintf("HTTP server error: %v", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Booking Service shutdown complete")
	}
	wg.Wait()
}
