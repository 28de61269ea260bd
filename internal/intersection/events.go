package intersection

import (
	"sync"
	"time"
)

// RotationReason records what triggered a light rotation.
type RotationReason string

// Rotation triggers.
const (
	ReasonThreshold RotationReason = "threshold"
	ReasonTimeout   RotationReason = "timeout"
	ReasonSignal    RotationReason = "signal"
	ReasonManual    RotationReason = "manual"
)

// RotationEvent is emitted after the light switches to a new direction.
type RotationEvent struct {
	Seq       int            `json:"seq"`
	Direction Direction      `json:"direction"`
	Previous  Direction      `json:"previous"`
	History   []Direction    `json:"history"`
	Reason    RotationReason `json:"reason"`
	At        time.Time      `json:"at"`
}

// PassageEvent is emitted after a vehicle has been granted the light and
// left the intersection.
type PassageEvent struct {
	Vehicle    Record    `json:"vehicle"`
	Registered time.Time `json:"registered"`
	Granted    time.Time `json:"granted"`
	// Occupancy is the number of vehicles queued on the vehicle's approach
	// when it was granted passage, itself included.
	Occupancy int `json:"occupancy"`
}

// Observer receives intersection events. Events are delivered outside the
// intersection lock, from the goroutine that caused them; implementations
// must not block.
type Observer interface {
	OnRotation(RotationEvent)
	OnPassage(PassageEvent)
}

// Observers fans events out to a dynamic set of observers.
type Observers struct {
	mu   sync.RWMutex
	list []Observer
}

// Add subscribes o to every later event.
func (o *Observers) Add(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.list = append(o.list, obs)
}

func (o *Observers) snapshot() []Observer {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.list
}

// OnRotation implements Observer.
func (o *Observers) OnRotation(ev RotationEvent) {
	for _, obs := range o.snapshot() {
		obs.OnRotation(ev)
	}
}

// OnPassage implements Observer.
func (o *Observers) OnPassage(ev PassageEvent) {
	for _, obs := range o.snapshot() {
		obs.OnPassage(ev)
	}
}
