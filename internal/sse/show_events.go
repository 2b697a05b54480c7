// Package sse fans seat status changes out to browsers watching a show.
package sse

import (
	"context"
	"sync"

	"ms-booking/internal/models"
)

const clientBuffer = 16

// ShowEventEmitter keeps one channel per connected client, grouped by show.
// It satisfies events.Publisher so it can sit next to kafka in a Multi.
type ShowEventEmitter struct {
	mu      sync.RWMutex
	clients map[string][]chan models.SeatStatusChangeEvent
}

func NewShowEventEmitter() *ShowEventEmitter {
	return &ShowEventEmitter{clients: make(map[string][]chan models.SeatStatusChangeEvent)}
}

// Subscribe registers a client for the show. The channel is closed once ctx
// is done.
func (e *ShowEventEmitter) Subscribe(ctx context.Context, showID string) <-chan models.SeatStatusChangeEvent {
	ch := make(chan models.SeatStatusChangeEvent, clientBuffer)

	e.mu.Lock()
	e.clients[showID] = append(e.clients[showID], ch)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.remove(showID, ch)
	}()
	return ch
}

func (e *ShowEventEmitter) PublishSeatStatus(_ context.Context, event models.SeatStatusChangeEvent) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, ch := range e.clients[event.ShowID] {
		// slow clients miss events rather than stall the publisher
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// PublishBookingConfirmed is a no-op. Browsers learn about bookings through
// the booked seat event.
func (e *ShowEventEmitter) PublishBookingConfirmed(context.Context, models.BookingConfirmedEvent) error {
	return nil
}

func (e *ShowEventEmitter) remove(showID string, ch chan models.SeatStatusChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clients := e.clients[showID]
	for i, c := range clients {
		if c == ch {
			e.clients[showID] = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
	if len(e.clients[showID]) == 0 {
		delete(e.clients, showID)
	}
}

// ClientCount returns the number of clients watching a show.
func (e *ShowEventEmitter) ClientCount(showID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients[showID])
}
