package intersection

import (
	"context"
	"sync"
	"time"
)

// monitor is the single lock guarding the light and the coordinator, paired
// with a broadcast condition. Waiters snapshot the generation channel under
// the lock; broadcast closes it and installs a fresh one.
type monitor struct {
	mu  sync.Mutex
	gen chan struct{}
}

func newMonitor() *monitor {
	return &monitor{gen: make(chan struct{})}
}

func (m *monitor) Lock()   { m.mu.Lock() }
func (m *monitor) Unlock() { m.mu.Unlock() }

// broadcastLocked wakes every waiter. The lock must be held.
func (m *monitor) broadcastLocked() {
	close(m.gen)
	m.gen = make(chan struct{})
}

// waitLocked releases the lock until the next broadcast or until ctx is
// done, then reacquires it. The caller must re-check its predicate.
func (m *monitor) waitLocked(ctx context.Context) error {
	ch := m.gen
	m.mu.Unlock()
	defer m.mu.Lock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
