// Package eventstest provides a recording events.Publisher for tests.
package eventstest

import (
	"context"

	"ms-booking/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockPublisher records calls for tests.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSeatStatus(ctx context.Context, event models.SeatStatusChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishBookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// SeatEvents returns every seat status event received so far.
func (m *MockPublisher) SeatEvents() []models.SeatStatusChangeEvent {
	var out []models.SeatStatusChangeEvent
	for _, call := range m.Calls {
		if call.Method == "PublishSeatStatus" {
			out = append(out, call.Arguments.Get(1).(models.SeatStatusChangeEvent))
		}
	}
	return out
}
