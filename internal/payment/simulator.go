// Package payment simulates the card charge taken when a booking is made.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-booking/internal/config"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

// DeclineMethod always fails. Handy for exercising the decline path.
const DeclineMethod = "decline"

// Simulator approves every charge unless told otherwise. No money moves.
type Simulator struct {
	cfg    config.PaymentConfig
	logger *logger.Logger
	now    func() time.Time
}

func NewSimulator(cfg config.PaymentConfig, log *logger.Logger) *Simulator {
	if cfg.DefaultMethod == "" {
		cfg.DefaultMethod = "Credit Card"
	}
	return &Simulator{cfg: cfg, logger: log, now: func() time.Time { return time.Now().UTC() }}
}

// Charge returns a completed payment for amount. The booking id is filled in
// by the caller.
func (s *Simulator) Charge(ctx context.Context, userID string, amount float64, method string) (*models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if method == "" {
		method = s.cfg.DefaultMethod
	}

	switch {
	case s.cfg.SimulateFailure:
		return nil, s.decline(userID, amount, "simulated failure")
	case strings.EqualFold(method, DeclineMethod):
		return nil, s.decline(userID, amount, "card declined")
	case amount <= 0:
		return nil, s.decline(userID, amount, "non-positive amount")
	}

	payment := &models.Payment{
		ID:            utils.GeneratePaymentID(),
		UserID:        userID,
		Amount:        amount,
		Method:        method,
		Status:        models.PaymentCompleted,
		TransactionID: utils.GenerateTransactionID(),
		PaidAt:        s.now(),
	}
	s.logger.Info("PAYMENT", fmt.Sprintf("Charged %.2f to %s via %s (%s)", amount, userID, method, payment.TransactionID))
	return payment, nil
}

func (s *Simulator) decline(userID string, amount float64, reason string) error {
	s.logger.Warn("PAYMENT", fmt.Sprintf("Declined %.2f for %s: %s", amount, userID, reason))
	return fmt.Errorf("%w: %s", models.ErrPaymentDeclined, reason)
}
