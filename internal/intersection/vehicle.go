package intersection

import (
	"context"
	"time"
)

// Vehicle is one car crossing the intersection. It is created before the
// run starts, runs once, and is never reused.
type Vehicle struct {
	ID         int
	Arrival    Direction
	Departure  Direction
	BrokenDown bool

	// The fields below are written by the coordinator under its lock.
	Congested bool
	Passed    bool
	Penalty   time.Duration
	LightWait time.Duration
}

// NewVehicle creates a vehicle with a uniformly chosen arrival direction
// that breaks down with the given probability.
func NewVehicle(id int, rng Random, breakdownProbability float64) *Vehicle {
	return &Vehicle{
		ID:         id,
		Arrival:    directions[rng.IntN(len(directions))],
		BrokenDown: rng.Float64() < breakdownProbability,
	}
}

// WaitedSeconds is the whole seconds the vehicle was held back: its
// breakdown penalty plus the time spent waiting for the light, each
// truncated separately.
func (v *Vehicle) WaitedSeconds() int {
	return int(v.Penalty.Seconds()) + int(v.LightWait.Seconds())
}

// Run drives the vehicle: travel to the light, pick a departure, and ask
// the intersection for passage.
func (v *Vehicle) Run(ctx context.Context, ix *Intersection) error {
	logger := ix.logger.With("vehicle", v.ID)
	logger.Debug("vehicle started", "from", v.Arrival)

	travel := between(ix.rng, ix.cfg.TravelMin, ix.cfg.TravelMax, ix.cfg.TravelStep)
	if err := sleep(ctx, travel); err != nil {
		return err
	}

	v.Departure = directions[ix.rng.IntN(len(directions))]
	logger.Debug("vehicle arrived at the light", "from", v.Arrival, "to", v.Departure, "travel", travel)

	return ix.coordinator.RequestPassage(ctx, v)
}

// Record is the immutable summary of a vehicle exposed after the run.
type Record struct {
	Seq           int           `json:"seq"`
	ID            int           `json:"id"`
	Arrival       Direction     `json:"arrival"`
	Departure     Direction     `json:"departure"`
	WaitedSeconds int           `json:"waited_seconds"`
	LightWait     time.Duration `json:"light_wait"`
	Penalty       time.Duration `json:"penalty"`
	BrokenDown    bool          `json:"broken_down"`
	Congested     bool          `json:"congested"`
	Passed        bool          `json:"passed"`
}

func (v *Vehicle) record(seq int) Record {
	return Record{
		Seq:           seq,
		ID:            v.ID,
		Arrival:       v.Arrival,
		Departure:     v.Departure,
		WaitedSeconds: v.WaitedSeconds(),
		LightWait:     v.LightWait,
		Penalty:       v.Penalty,
		BrokenDown:    v.BrokenDown,
		Congested:     v.Congested,
		Passed:        v.Passed,
	}
}
