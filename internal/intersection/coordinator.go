package intersection

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// CongestionLimit is the occupancy an approach may reach at grant time
// before the vehicle granted is flagged as having met heavy traffic.
const CongestionLimit = 2

// Coordinator sequences vehicles through the intersection. It shares the
// light's lock; every field below is guarded by it.
type Coordinator struct {
	mon       *monitor
	light     *Light
	breakdown BreakdownPolicy
	now       func() time.Time
	observer  Observer
	logger    *slog.Logger

	occupancy           map[Direction]int
	passedSinceRotation int
	passed              int
	registry            []*Vehicle
	congested           map[int]struct{}
	brokenDown          map[int]struct{}

	// update carries the "a vehicle went through" signal to the scheduler.
	update chan struct{}
}

func newCoordinator(mon *monitor, light *Light, cfg Config, observer Observer) *Coordinator {
	occ := make(map[Direction]int, len(directions))
	for _, d := range directions {
		occ[d] = 0
	}
	return &Coordinator{
		mon:        mon,
		light:      light,
		breakdown:  cfg.Breakdown,
		now:        cfg.Now,
		observer:   observer,
		logger:     cfg.Logger.With("component", "coordinator"),
		occupancy:  occ,
		congested:  make(map[int]struct{}),
		brokenDown: make(map[int]struct{}),
		update:     make(chan struct{}, 1),
	}
}

// RequestPassage registers v at its arrival approach and blocks until the
// light permits that approach. A broken-down vehicle is stalled by the
// breakdown policy first. The only error is ctx's. When ctx is done during
// the stall the vehicle is never registered; when it is done before the
// light turns the vehicle's occupancy is released.
func (c *Coordinator) RequestPassage(ctx context.Context, v *Vehicle) error {
	c.mon.Lock()

	if v.BrokenDown {
		c.logger.Info("vehicle broke down", "vehicle", v.ID, "from", v.Arrival)
		stalled, err := c.breakdown.Stall(ctx, c.mon)
		v.Penalty += stalled
		c.brokenDown[v.ID] = struct{}{}
		if err != nil {
			c.mon.Unlock()
			c.logger.Debug("vehicle abandoned while broken down", "vehicle", v.ID, "from", v.Arrival, "error", err)
			return fmt.Errorf("intersection: vehicle %d broken down on %s: %w", v.ID, v.Arrival, err)
		}
	}

	c.registry = append(c.registry, v)
	seq := len(c.registry)
	c.passedSinceRotation++

	registered := c.now()
	c.occupancy[v.Arrival]++

	err := c.light.waitUntilPermittedLocked(ctx, v.Arrival)

	granted := c.now()
	v.LightWait = granted.Sub(registered)

	occupancy := c.occupancy[v.Arrival]
	if err == nil {
		if occupancy > CongestionLimit {
			v.Congested = true
			c.congested[v.ID] = struct{}{}
		}
		v.Passed = true
		c.passed++
	}
	c.occupancy[v.Arrival]--
	c.signalUpdate()

	rec := v.record(seq)
	c.mon.Unlock()

	if err != nil {
		c.logger.Debug("vehicle abandoned the light", "vehicle", v.ID, "from", v.Arrival, "error", err)
		return fmt.Errorf("intersection: vehicle %d waiting on %s: %w", v.ID, v.Arrival, err)
	}

	if rec.Congested {
		c.logger.Info("vehicle met heavy traffic", "vehicle", v.ID, "from", v.Arrival, "occupancy", occupancy)
	}
	c.logger.Info("vehicle moved",
		"vehicle", v.ID,
		"from", v.Arrival,
		"to", v.Departure,
		"waited_seconds", rec.WaitedSeconds,
	)
	c.observer.OnPassage(PassageEvent{
		Vehicle:    rec,
		Registered: registered,
		Granted:    granted,
		Occupancy:  occupancy,
	})
	return nil
}

// signalUpdate sets the scheduler's update flag without blocking.
func (c *Coordinator) signalUpdate() {
	select {
	case c.update <- struct{}{}:
	default:
	}
}

// clearUpdate resets the scheduler's update flag.
func (c *Coordinator) clearUpdate() {
	select {
	case <-c.update:
	default:
	}
}

// Registry returns a record for every registered vehicle in arrival order.
func (c *Coordinator) Registry() []Record {
	c.mon.Lock()
	defer c.mon.Unlock()

	out := make([]Record, len(c.registry))
	for i, v := range c.registry {
		out[i] = v.record(i + 1)
	}
	return out
}

// Congested returns the IDs of vehicles that met heavy traffic.
func (c *Coordinator) Congested() []int {
	c.mon.Lock()
	defer c.mon.Unlock()
	return sortedIDs(c.congested)
}

// BrokenDown returns the IDs of vehicles that broke down.
func (c *Coordinator) BrokenDown() []int {
	c.mon.Lock()
	defer c.mon.Unlock()
	return sortedIDs(c.brokenDown)
}

// Occupancy returns the number of vehicles waiting on each approach.
func (c *Coordinator) Occupancy() map[Direction]int {
	c.mon.Lock()
	defer c.mon.Unlock()
	return maps.Clone(c.occupancy)
}

// Snapshot is a consistent view of the intersection state.
type Snapshot struct {
	Permitted           Direction         `json:"permitted"`
	History             []Direction       `json:"history"`
	Rotations           int               `json:"rotations"`
	Occupancy           map[Direction]int `json:"occupancy"`
	Registered          int               `json:"registered"`
	Passed              int               `json:"passed"`
	PassedSinceRotation int               `json:"passed_since_rotation"`
	Congested           int               `json:"congested"`
	BrokenDown          int               `json:"broken_down"`
	At                  time.Time         `json:"at"`
}

// Snapshot captures the light and coordinator state under a single lock.
func (c *Coordinator) Snapshot() Snapshot {
	c.mon.Lock()
	defer c.mon.Unlock()

	history := make([]Direction, len(c.light.history))
	copy(history, c.light.history)

	return Snapshot{
		Permitted:           c.light.permitted,
		History:             history,
		Rotations:           c.light.rotations,
		Occupancy:           maps.Clone(c.occupancy),
		Registered:          len(c.registry),
		Passed:              c.passed,
		PassedSinceRotation: c.passedSinceRotation,
		Congested:           len(c.congested),
		BrokenDown:          len(c.brokenDown),
		At:                  c.now(),
	}
}

func sortedIDs(set map[int]struct{}) []int {
	return slices.Sorted(maps.Keys(set))
}
