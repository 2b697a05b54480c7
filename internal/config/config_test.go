package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEAT_LOCK_DEFAULT_HOLD_SECONDS", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("LOCK_GUARD", "")

	cfg := Load()

	assert.Equal(t, 300*time.Second, cfg.Locks.DefaultHold)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Locks.Guard)
	assert.Equal(t, "booking.confirmed", cfg.Kafka.Topics.BookingConfirmed)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SEAT_LOCK_DEFAULT_HOLD_SECONDS", "120")
	t.Setenv("SEAT_LOCK_MAX_HOLD_SECONDS", "600")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("AUTH_MODE", "HS256")
	t.Setenv("PAYMENT_SIMULATE_FAILURE", "1")

	cfg := Load()

	assert.Equal(t, 2*time.Minute, cfg.Locks.DefaultHold)
	assert.Equal(t, 10*time.Minute, cfg.Locks.MaxHold)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "hs256", cfg.Auth.Mode)
	assert.True(t, cfg.Payment.SimulateFailure)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SEAT_LOCK_DEFAULT_HOLD_SECONDS", "five minutes")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("KAFKA_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 300*time.Second, cfg.Locks.DefaultHold)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Kafka.Enabled)
}
