// Package redis provides a show guard shared between service instances.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-booking/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrGuardTimeout = errors.New("timed out waiting for show guard")

const keyPrefix = "show_lock:"

// releaseScript deletes the key only while it still carries our owner id.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Guard is a SETNX lock per show. The TTL bounds how long a crashed holder
// can block a show.
type Guard struct {
	Client *redis.Client
	TTL    time.Duration
	Wait   time.Duration
	Retry  time.Duration
	Logger *logger.Logger
}

func NewGuard(client *redis.Client, ttl, wait time.Duration, log *logger.Logger) *Guard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &Guard{
		Client: client,
		TTL:    ttl,
		Wait:   wait,
		Retry:  25 * time.Millisecond,
		Logger: log,
	}
}

func Key(showID string) string {
	return keyPrefix + showID
}

func (g *Guard) Acquire(ctx context.Context, showID string) (func(), error) {
	key := Key(showID)
	owner := uuid.NewString()
	deadline := time.Now().Add(g.Wait)

	for {
		ok, err := g.Client.SetNX(ctx, key, owner, g.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis guard %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrGuardTimeout, showID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.Retry):
		}
	}

	return func() {
		// the caller's ctx may already be done; release must still run
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, g.Client, []string{key}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
			g.Logger.Warn("REDIS", fmt.Sprintf("release of %s failed: %v", key, err))
		}
	}, nil
}
