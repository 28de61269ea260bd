package intersection

import (
	"context"
	"sync"
	"time"
)

// DefaultBreakdownPenalty is the delay charged to a broken-down vehicle.
const DefaultBreakdownPenalty = 2 * time.Second

// BreakdownPolicy decides how a broken-down vehicle is delayed before it
// registers at the light. Stall runs with the intersection lock held; l
// lets a policy release it while the vehicle is stalled. The returned
// duration is charged to the vehicle's penalty. A non-nil error means the
// stall was cut short by ctx and the vehicle must not register.
type BreakdownPolicy interface {
	Stall(ctx context.Context, l sync.Locker) (time.Duration, error)
}

// LockedDelay stalls for Delay while keeping the intersection locked, so no
// other vehicle can register or leave until the broken-down one recovers.
type LockedDelay struct {
	Delay time.Duration
}

// Stall implements BreakdownPolicy.
func (p LockedDelay) Stall(ctx context.Context, _ sync.Locker) (time.Duration, error) {
	return stallFor(ctx, p.Delay)
}

// UnlockedDelay stalls for Delay with the intersection unlocked; only the
// broken-down vehicle is held back.
type UnlockedDelay struct {
	Delay time.Duration
}

// Stall implements BreakdownPolicy.
func (p UnlockedDelay) Stall(ctx context.Context, l sync.Locker) (time.Duration, error) {
	l.Unlock()
	defer l.Lock()
	return stallFor(ctx, p.Delay)
}

// NoBreakdownDelay charges Penalty without stalling at all.
type NoBreakdownDelay struct {
	Penalty time.Duration
}

// Stall implements BreakdownPolicy.
func (p NoBreakdownDelay) Stall(context.Context, sync.Locker) (time.Duration, error) {
	return p.Penalty, nil
}

// stallFor sleeps for d and reports how long it actually slept.
func stallFor(ctx context.Context, d time.Duration) (time.Duration, error) {
	start := time.Now()
	if err := sleep(ctx, d); err != nil {
		return time.Since(start), err
	}
	return d, nil
}
