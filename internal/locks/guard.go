package locks

import (
	"context"
	"sync"
)

// Guard provides the per-show critical section. Release must be called
// exactly once after a successful Acquire.
type Guard interface {
	Acquire(ctx context.Context, showID string) (release func(), err error)
}

// LocalGuard is an in-process mutex keyed by show id. Entries are dropped
// once nobody holds or waits on them.
type LocalGuard struct {
	mu    sync.Mutex
	shows map[string]*showSlot
}

type showSlot struct {
	sem  chan struct{}
	refs int
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{shows: make(map[string]*showSlot)}
}

func (g *LocalGuard) Acquire(ctx context.Context, showID string) (func(), error) {
	g.mu.Lock()
	slot, ok := g.shows[showID]
	if !ok {
		slot = &showSlot{sem: make(chan struct{}, 1)}
		g.shows[showID] = slot
	}
	slot.refs++
	g.mu.Unlock()

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		g.drop(showID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.sem
			g.drop(showID, slot)
		})
	}, nil
}

func (g *LocalGuard) drop(showID string, slot *showSlot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(g.shows, showID)
	}
}

// Len reports how many shows currently have holders or waiters.
func (g *LocalGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.shows)
}

type chain []Guard

// Chain acquires every guard in order and releases them in reverse.
func Chain(guards ...Guard) Guard {
	return chain(guards)
}

func (c chain) Acquire(ctx context.Context, showID string) (func(), error) {
	releases := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, g := range c {
		release, err := g.Acquire(ctx, showID)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}
