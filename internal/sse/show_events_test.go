package sse

import (
	"context"
	"testing"
	"time"

	"ms-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribersReceiveOnlyTheirShow(t *testing.T) {
	e := NewShowEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s1 := e.Subscribe(ctx, "S1")
	s2 := e.Subscribe(ctx, "S2")

	require.NoError(t, e.PublishSeatStatus(ctx, models.NewSeatStatusChangeEvent("S1", []string{"A1"}, models.SeatLocked)))

	select {
	case ev := <-s1:
		assert.Equal(t, []string{"A1"}, ev.SeatIDs)
		assert.Equal(t, models.SeatLocked, ev.Status)
	case <-time.After(time.Second):
		t.Fatal("no event for S1")
	}

	select {
	case ev := <-s2:
		t.Fatalf("unexpected event for S2: %+v", ev)
	default:
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	e := NewShowEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	ch := e.Subscribe(ctx, "S1")
	assert.Equal(t, 1, e.ClientCount("S1"))

	cancel()
	assert.Eventually(t, func() bool { return e.ClientCount("S1") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-ch
	assert.False(t, open)
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	e := NewShowEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.Subscribe(ctx, "S1")

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuffer*3; i++ {
			_ = e.PublishSeatStatus(ctx, models.NewSeatStatusChangeEvent("S1", []string{"A1"}, models.SeatAvailable))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full client")
	}
}
