package locks

import (
	"context"
	"fmt"
	"time"

	"ms-booking/internal/logger"
)

// Sweeper reclaims expired holds on a fixed interval so seats come back even
// when nobody reads the show.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   *logger.Logger
}

func NewSweeper(manager *Manager, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{manager: manager, interval: interval, logger: log}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("SWEEPER", fmt.Sprintf("Expired lock sweeper started (every %s)", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("SWEEPER", "Expired lock sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one reclaim pass over every show.
func (s *Sweeper) Sweep(ctx context.Context) int {
	n, err := s.manager.ReclaimAll(ctx)
	if err != nil {
		s.logger.Error("SWEEPER", fmt.Sprintf("reclaim pass failed: %v", err))
	}
	if n > 0 {
		s.logger.Info("SWEEPER", fmt.Sprintf("reclaimed %d expired seats", n))
	}
	return n
}
