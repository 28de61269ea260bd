package intersection

import (
	"context"
	"slices"
	"time"
)

// Light is the traffic light controller. It permits one direction at a time
// and never repeats a direction until all four have been used.
type Light struct {
	mon      *monitor
	rng      Random
	now      func() time.Time
	observer Observer

	permitted Direction
	history   []Direction
	rotations int
}

func newLight(mon *monitor, rng Random, now func() time.Time, observer Observer) *Light {
	return &Light{
		mon:      mon,
		rng:      rng,
		now:      now,
		observer: observer,
		history:  make([]Direction, 0, len(directions)),
	}
}

// Advance rotates the light to a direction not yet in the history, wakes
// every waiting vehicle, and returns the new direction.
func (l *Light) Advance() Direction {
	return l.advance(ReasonManual).Direction
}

func (l *Light) advance(reason RotationReason) RotationEvent {
	l.mon.Lock()
	ev := l.advanceLocked(reason)
	l.mon.Unlock()

	l.observer.OnRotation(ev)
	return ev
}

// advanceLocked performs the rotation. The lock must be held; the caller
// delivers the returned event once the lock is released.
func (l *Light) advanceLocked(reason RotationReason) RotationEvent {
	if len(l.history) == len(directions) {
		l.history = l.history[:0]
	}

	candidates := make([]Direction, 0, len(directions))
	for _, d := range directions {
		if !slices.Contains(l.history, d) {
			candidates = append(candidates, d)
		}
	}
	next := candidates[l.rng.IntN(len(candidates))]

	prev := l.permitted
	l.history = append(l.history, next)
	l.permitted = next
	l.rotations++
	l.mon.broadcastLocked()

	return RotationEvent{
		Seq:       l.rotations,
		Direction: next,
		Previous:  prev,
		History:   slices.Clone(l.history),
		Reason:    reason,
		At:        l.now(),
	}
}

// WaitUntilPermitted blocks until d is the permitted direction or ctx is done.
func (l *Light) WaitUntilPermitted(ctx context.Context, d Direction) error {
	l.mon.Lock()
	defer l.mon.Unlock()
	return l.waitUntilPermittedLocked(ctx, d)
}

// waitUntilPermittedLocked is WaitUntilPermitted for callers that already
// hold the lock. The lock is held again on return, including on error.
func (l *Light) waitUntilPermittedLocked(ctx context.Context, d Direction) error {
	for l.permitted != d {
		if err := l.mon.waitLocked(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Permitted returns the direction currently allowed through.
func (l *Light) Permitted() Direction {
	l.mon.Lock()
	defer l.mon.Unlock()
	return l.permitted
}

// History returns the directions used since the last reset, oldest first.
func (l *Light) History() []Direction {
	l.mon.Lock()
	defer l.mon.Unlock()
	return slices.Clone(l.history)
}

// Rotations returns how many times the light has rotated.
func (l *Light) Rotations() int {
	l.mon.Lock()
	defer l.mon.Unlock()
	return l.rotations
}
