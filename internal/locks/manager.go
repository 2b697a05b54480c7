// Package locks implements seat holds: issuing lock tokens, releasing them,
// and reclaiming holds whose time ran out.
package locks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-booking/internal/db"
	"ms-booking/internal/events"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/seats"
	"ms-booking/internal/utils"
)

const (
	DefaultHold = 300 * time.Second
	MaxHold     = 30 * time.Minute
)

type Manager struct {
	repo        db.Repository
	guard       Guard
	publisher   events.Publisher
	logger      *logger.Logger
	now         func() time.Time
	defaultHold time.Duration
	maxHold     time.Duration
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithDefaultHold(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.defaultHold = d
		}
	}
}

func WithMaxHold(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.maxHold = d
		}
	}
}

func NewManager(repo db.Repository, guard Guard, publisher events.Publisher, log *logger.Logger, opts ...Option) *Manager {
	if guard == nil {
		guard = NewLocalGuard()
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	m := &Manager{
		repo:        repo,
		guard:       guard,
		publisher:   publisher,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
		defaultHold: DefaultHold,
		maxHold:     MaxHold,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now is the manager's clock. Lock expiry is always judged against it.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Exclusive holds the show's guard across two transactions. The first
// reclaims expired holds and commits on its own; the second runs fn. A
// failing fn rolls back only its own writes, so fn never sees a stale hold
// and a reclaim is never undone.
func (m *Manager) Exclusive(ctx context.Context, showID string, fn func(ctx context.Context, repo db.Repository) error) error {
	release, err := m.guard.Acquire(ctx, showID)
	if err != nil {
		return fmt.Errorf("%w: acquire show %s: %v", models.ErrPersistence, showID, err)
	}
	defer release()

	if _, err := m.reclaimHeld(ctx, showID); err != nil {
		return err
	}
	return persistence(m.repo.RunInTx(ctx, fn))
}

// ReclaimExpired returns every seat of the show whose hold has run out to
// available.
func (m *Manager) ReclaimExpired(ctx context.Context, showID string) ([]string, error) {
	release, err := m.guard.Acquire(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire show %s: %v", models.ErrPersistence, showID, err)
	}
	defer release()

	return m.reclaimHeld(ctx, showID)
}

// reclaimHeld expects the show guard to be held.
func (m *Manager) reclaimHeld(ctx context.Context, showID string) ([]string, error) {
	now := m.now()
	var reclaimed []string
	err := m.repo.RunInTx(ctx, func(ctx context.Context, repo db.Repository) error {
		locked, err := repo.LockedSeats(ctx, showID)
		if err != nil {
			return err
		}
		var expired []string
		for _, seat := range locked {
			if !seat.LockedUntil.After(now) {
				expired = append(expired, seat.ID)
			}
		}
		if len(expired) == 0 {
			return nil
		}
		if _, err := repo.ReleaseSeats(ctx, showID, expired); err != nil {
			return err
		}
		reclaimed = expired
		return nil
	})
	if err != nil {
		return nil, persistence(err)
	}

	if len(reclaimed) > 0 {
		m.logger.LogLock("RECLAIM", showID, fmt.Sprintf("released %d expired seats: %s", len(reclaimed), strings.Join(reclaimed, ",")))
		m.publishSeats(ctx, showID, reclaimed, models.SeatAvailable)
	}
	return reclaimed, nil
}

// ReclaimAll reclaims every show that currently has an expired hold.
func (m *Manager) ReclaimAll(ctx context.Context) (int, error) {
	shows, err := m.repo.ShowsWithExpiredLocks(ctx, m.now())
	if err != nil {
		return 0, persistence(err)
	}

	total := 0
	var errs []error
	for _, showID := range shows {
		reclaimed, err := m.ReclaimExpired(ctx, showID)
		if err != nil {
			errs = append(errs, fmt.Errorf("show %s: %w", showID, err))
			continue
		}
		total += len(reclaimed)
	}
	return total, errors.Join(errs...)
}

// GetShow returns the show and its seat layout after reclaiming expired holds.
func (m *Manager) GetShow(ctx context.Context, showID string) (*models.Show, error) {
	if _, err := m.ReclaimExpired(ctx, showID); err != nil {
		return nil, err
	}
	show, err := m.repo.GetShow(ctx, showID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, models.ErrShowNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}
	return show, nil
}

// LockSeats tries each requested seat in order and locks the available ones.
// Seats that are missing or taken land in FailedSeats. A token is returned
// even when nothing was locked; such a token resolves to nothing.
func (m *Manager) LockSeats(ctx context.Context, showID string, seatIDs []string, hold time.Duration) (*models.LockResult, error) {
	requested := seats.Dedupe(seatIDs)
	if len(requested) == 0 {
		return nil, models.ErrNoSeatsRequested
	}
	hold = m.holdFor(hold)

	result := &models.LockResult{
		LockToken:   utils.GenerateLockToken(),
		LockedSeats: []string{},
		FailedSeats: []string{},
	}

	err := m.Exclusive(ctx, showID, func(ctx context.Context, repo db.Repository) error {
		if _, err := repo.GetShowMeta(ctx, showID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return models.ErrShowNotFound
			}
			return err
		}

		result.ExpiresAt = m.now().Add(hold)
		locked := make([]string, 0, len(requested))
		failed := []string{}
		for _, seatID := range requested {
			ok, err := repo.TryLockSeat(ctx, showID, seatID, result.LockToken, result.ExpiresAt)
			if err != nil {
				return err
			}
			if ok {
				locked = append(locked, seatID)
			} else {
				failed = append(failed, seatID)
			}
		}
		result.LockedSeats, result.FailedSeats = locked, failed
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.LogLock("LOCK", showID, fmt.Sprintf("locked=%v failed=%v expires=%s", result.LockedSeats, result.FailedSeats, result.ExpiresAt.Format(time.RFC3339)))
	if len(result.LockedSeats) > 0 {
		m.publishSeats(ctx, showID, result.LockedSeats, models.SeatLocked)
	}
	return result, nil
}

// ReleaseLock returns the token's seats to available. Unknown, consumed and
// already-reclaimed tokens are a no-op.
func (m *Manager) ReleaseLock(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	held, err := m.repo.SeatsByLockToken(ctx, token)
	if err != nil {
		return persistence(err)
	}
	if len(held) == 0 {
		m.logger.Debug("LOCK", "release of unknown token ignored")
		return nil
	}
	showID := held[0].ShowID

	var released []string
	err = m.Exclusive(ctx, showID, func(ctx context.Context, repo db.Repository) error {
		ids, err := repo.ReleaseByToken(ctx, token)
		released = ids
		return err
	})
	if err != nil {
		return err
	}

	if len(released) > 0 {
		m.logger.LogLock("RELEASE", showID, fmt.Sprintf("released %s", strings.Join(released, ",")))
		m.publishSeats(ctx, showID, released, models.SeatAvailable)
	}
	return nil
}

func (m *Manager) holdFor(hold time.Duration) time.Duration {
	if hold <= 0 {
		return m.defaultHold
	}
	if hold > m.maxHold {
		return m.maxHold
	}
	return hold
}

// publishSeats sends a seat status event and logs a failed publish.
func (m *Manager) publishSeats(ctx context.Context, showID string, seatIDs []string, state models.SeatState) {
	event := models.NewSeatStatusChangeEvent(showID, seatIDs, state)
	if err := m.publisher.PublishSeatStatus(ctx, event); err != nil {
		m.logger.Warn("EVENTS", fmt.Sprintf("seat status event for show %s not published: %v", showID, err))
	}
}

// persistence tags storage failures so callers can tell them from rejections.
func persistence(err error) error {
	if err == nil || models.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrPersistence, err)
}
