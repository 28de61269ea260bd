// Package intersectiontest provides test doubles for the intersection package.
package intersectiontest

import (
	"sync"
	"time"

	"github.com/flemzord/junction/internal/intersection"
)

// FixedRandom is a deterministic intersection.Random. IntN and Int64N
// return Index clamped to the range; Float64 returns FloatVal; Shuffle
// leaves the order untouched.
type FixedRandom struct {
	Index    int
	FloatVal float64
}

// Compile-time interface check.
var _ intersection.Random = (*FixedRandom)(nil)

// IntN implements intersection.Random.
func (r *FixedRandom) IntN(n int) int { return min(r.Index, n-1) }

// Int64N implements intersection.Random.
func (r *FixedRandom) Int64N(n int64) int64 { return min(int64(r.Index), n-1) }

// Float64 implements intersection.Random.
func (r *FixedRandom) Float64() float64 { return r.FloatVal }

// Shuffle implements intersection.Random.
func (r *FixedRandom) Shuffle(int, func(i, j int)) {}

// RecordingObserver collects every event it receives.
type RecordingObserver struct {
	mu        sync.Mutex
	rotations []intersection.RotationEvent
	passages  []intersection.PassageEvent
	notify    chan struct{}
}

// Compile-time interface check.
var _ intersection.Observer = (*RecordingObserver)(nil)

// NewRecordingObserver returns an empty RecordingObserver.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{notify: make(chan struct{}, 1)}
}

// OnRotation implements intersection.Observer.
func (o *RecordingObserver) OnRotation(ev intersection.RotationEvent) {
	o.mu.Lock()
	o.rotations = append(o.rotations, ev)
	o.mu.Unlock()
	o.poke()
}

// OnPassage implements intersection.Observer.
func (o *RecordingObserver) OnPassage(ev intersection.PassageEvent) {
	o.mu.Lock()
	o.passages = append(o.passages, ev)
	o.mu.Unlock()
	o.poke()
}

func (o *RecordingObserver) poke() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// Rotations returns the rotation events received so far.
func (o *RecordingObserver) Rotations() []intersection.RotationEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]intersection.RotationEvent(nil), o.rotations...)
}

// Passages returns the passage events received so far.
func (o *RecordingObserver) Passages() []intersection.PassageEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]intersection.PassageEvent(nil), o.passages...)
}

// WaitPassages blocks until at least n passages were recorded or timeout
// elapses, and reports whether the count was reached.
func (o *RecordingObserver) WaitPassages(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if len(o.Passages()) >= n {
			return true
		}
		select {
		case <-o.notify:
		case <-deadline:
			return len(o.Passages()) >= n
		}
	}
}

// WaitRotations blocks until at least n rotations were recorded or timeout
// elapses, and reports whether the count was reached.
func (o *RecordingObserver) WaitRotations(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if len(o.Rotations()) >= n {
			return true
		}
		select {
		case <-o.notify:
		case <-deadline:
			return len(o.Rotations()) >= n
		}
	}
}
