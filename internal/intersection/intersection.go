// Package intersection implements the coordination protocol of a single
// four-way intersection: a rotating traffic light, the vehicles waiting on
// it, and the scheduler that decides when the light turns.
//
// The light and the coordinator share one lock. Vehicles register under it,
// release it while they wait for their approach to be permitted, and pass
// through in the order the light grants them.
package intersection

import (
	"log/slog"
	"time"
)

// Config tunes an Intersection. Unset fields take the defaults noted below.
type Config struct {
	// Random drives light rotation and vehicle choices. Default: time-seeded.
	Random Random

	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	// Logger receives protocol logs. Default: slog.Default().
	Logger *slog.Logger

	// Breakdown stalls broken-down vehicles. Default: LockedDelay of
	// DefaultBreakdownPenalty.
	Breakdown BreakdownPolicy

	// TravelMin and TravelMax bound a vehicle's trip to the light. Zero
	// means vehicles reach it immediately.
	TravelMin time.Duration
	TravelMax time.Duration

	// TravelStep is the granularity of travel draws: a trip lasts
	// TravelMin plus a whole number of steps. Default: 1s.
	TravelStep time.Duration

	// Threshold is the number of registrations that forces a rotation. Default: 3.
	Threshold int

	// Timeout is how long the scheduler waits for traffic. Default: 3s.
	Timeout time.Duration

	// Pacing is the pause between scheduler decisions. Zero disables it.
	Pacing time.Duration
}

func (c Config) withDefaults() Config {
	if c.Random == nil {
		c.Random = NewRandom(0)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Breakdown == nil {
		c.Breakdown = LockedDelay{Delay: DefaultBreakdownPenalty}
	}
	if c.TravelStep <= 0 {
		c.TravelStep = time.Second
	}
	if c.Threshold <= 0 {
		c.Threshold = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	return c
}

// Intersection owns the shared state of one run. It is passed to every
// vehicle goroutine and to the scheduler; there is no package-level state.
type Intersection struct {
	cfg       Config
	rng       Random
	logger    *slog.Logger
	observers *Observers

	light       *Light
	coordinator *Coordinator
	scheduler   *Scheduler
}

// New builds an intersection whose light has not rotated yet.
func New(cfg Config) *Intersection {
	cfg = cfg.withDefaults()

	mon := newMonitor()
	observers := &Observers{}
	light := newLight(mon, cfg.Random, cfg.Now, observers)
	coordinator := newCoordinator(mon, light, cfg, observers)

	return &Intersection{
		cfg:         cfg,
		rng:         cfg.Random,
		logger:      cfg.Logger.With("component", "vehicle"),
		observers:   observers,
		light:       light,
		coordinator: coordinator,
		scheduler:   newScheduler(coordinator, cfg),
	}
}

// Light returns the traffic light controller.
func (ix *Intersection) Light() *Light { return ix.light }

// Coordinator returns the passage coordinator.
func (ix *Intersection) Coordinator() *Coordinator { return ix.coordinator }

// Scheduler returns the rotation scheduler.
func (ix *Intersection) Scheduler() *Scheduler { return ix.scheduler }

// Random returns the shared random source.
func (ix *Intersection) Random() Random { return ix.rng }

// AddObserver subscribes obs to rotation and passage events.
func (ix *Intersection) AddObserver(obs Observer) {
	ix.observers.Add(obs)
}

// Snapshot is shorthand for Coordinator().Snapshot().
func (ix *Intersection) Snapshot() Snapshot {
	return ix.coordinator.Snapshot()
}

// Records is shorthand for Coordinator().Registry().
func (ix *Intersection) Records() []Record {
	return ix.coordinator.Registry()
}
