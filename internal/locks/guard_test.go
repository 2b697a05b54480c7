package locks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalGuardSerializesShow(t *testing.T) {
	g := NewLocalGuard()
	ctx := context.Background()

	var inside, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := g.Acquire(ctx, "show-1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak)
	assert.Zero(t, g.Len())
}

func TestLocalGuardShowsAreIndependent(t *testing.T) {
	g := NewLocalGuard()
	ctx := context.Background()

	r1, err := g.Acquire(ctx, "show-1")
	require.NoError(t, err)
	r2, err := g.Acquire(ctx, "show-2")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	r1()
	r1()
	r2()
	assert.Zero(t, g.Len())
}

func TestLocalGuardHonoursContext(t *testing.T) {
	g := NewLocalGuard()
	release, err := g.Acquire(context.Background(), "show-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Acquire(ctx, "show-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, g.Len())
}

type failingGuard struct{}

func (failingGuard) Acquire(context.Context, string) (func(), error) {
	return nil, errors.New("unavailable")
}

func TestChainReleasesOnFailure(t *testing.T) {
	local := NewLocalGuard()
	g := Chain(local, failingGuard{})

	_, err := g.Acquire(context.Background(), "show-1")
	require.Error(t, err)
	assert.Zero(t, local.Len())

	ok := Chain(local, NewLocalGuard())
	release, err := ok.Acquire(context.Background(), "show-1")
	require.NoError(t, err)
	assert.Equal(t, 1, local.Len())
	release()
	release()
	assert.Zero(t, local.Len())
}
