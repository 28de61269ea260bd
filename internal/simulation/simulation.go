// Package simulation runs one fleet of vehicles through an intersection
// and collects the outcome.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/flemzord/junction/internal/intersection"
)

// MaxVehicles is the largest fleet a run accepts.
const MaxVehicles = 10000

// ServiceName is the key under which the running simulation is published
// to modules.
const ServiceName = "simulation"

var (
	// ErrInvalidFleet is returned when the fleet size is not in [1, MaxVehicles].
	ErrInvalidFleet = errors.New("simulation: invalid fleet size")

	// ErrVehicleFailed wraps a panic recovered from a vehicle goroutine.
	ErrVehicleFailed = errors.New("simulation: vehicle failed")
)

// Config describes one run.
type Config struct {
	Cars                 int
	Seed                 uint64
	BreakdownProbability float64

	TravelMin  time.Duration
	TravelMax  time.Duration
	TravelStep time.Duration

	Threshold int
	Timeout   time.Duration
	Pacing    time.Duration

	// BreakdownPenalty is charged to every broken-down vehicle.
	BreakdownPenalty time.Duration
	// HoldLock keeps the intersection locked while a vehicle is broken down.
	HoldLock bool

	// Breakdown overrides the policy derived from BreakdownPenalty and HoldLock.
	Breakdown intersection.BreakdownPolicy

	Logger *slog.Logger
	Now    func() time.Time
}

// Simulation is a fleet bound to an intersection. It runs once.
type Simulation struct {
	id       uuid.UUID
	seed     uint64
	now      func() time.Time
	logger   *slog.Logger
	ix       *intersection.Intersection
	vehicles []*intersection.Vehicle
}

// New validates cfg and creates the fleet. Vehicle IDs are 1..Cars in a
// shuffled order; each vehicle's arrival and breakdown are drawn here.
func New(cfg Config) (*Simulation, error) {
	if cfg.Cars <= 0 || cfg.Cars > MaxVehicles {
		return nil, fmt.Errorf("%w: %d (allowed 1 to %d)", ErrInvalidFleet, cfg.Cars, MaxVehicles)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(cfg.Now().UnixNano())
	}
	rng := intersection.NewRandom(seed)

	policy := cfg.Breakdown
	if policy == nil {
		if cfg.HoldLock {
			policy = intersection.LockedDelay{Delay: cfg.BreakdownPenalty}
		} else {
			policy = intersection.UnlockedDelay{Delay: cfg.BreakdownPenalty}
		}
	}

	id := uuid.New()
	logger := cfg.Logger.With("run_id", id.String())

	ix := intersection.New(intersection.Config{
		Random:     rng,
		Now:        cfg.Now,
		Logger:     logger,
		Breakdown:  policy,
		TravelMin:  cfg.TravelMin,
		TravelMax:  cfg.TravelMax,
		TravelStep: cfg.TravelStep,
		Threshold:  cfg.Threshold,
		Timeout:    cfg.Timeout,
		Pacing:     cfg.Pacing,
	})

	ids := make([]int, cfg.Cars)
	for i := range ids {
		ids[i] = i + 1
	}
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	vehicles := make([]*intersection.Vehicle, len(ids))
	for i, vid := range ids {
		vehicles[i] = intersection.NewVehicle(vid, rng, cfg.BreakdownProbability)
	}

	return &Simulation{
		id:       id,
		seed:     seed,
		now:      cfg.Now,
		logger:   logger.With("component", "simulation"),
		ix:       ix,
		vehicles: vehicles,
	}, nil
}

// ID returns the run identifier.
func (s *Simulation) ID() string { return s.id.String() }

// Seed returns the seed actually used, which is time-derived when the
// configured seed was zero.
func (s *Simulation) Seed() uint64 { return s.seed }

// Intersection returns the intersection the fleet drives through.
func (s *Simulation) Intersection() *intersection.Intersection { return s.ix }

// AddObserver subscribes obs to intersection events.
func (s *Simulation) AddObserver(obs intersection.Observer) { s.ix.AddObserver(obs) }

// Snapshot returns the live intersection state.
func (s *Simulation) Snapshot() intersection.Snapshot { return s.ix.Snapshot() }

// Records returns the registered vehicles in arrival order.
func (s *Simulation) Records() []intersection.Record { return s.ix.Records() }

// Result is the outcome of a run.
type Result struct {
	RunID     string
	Seed      uint64
	Cars      int
	Started   time.Time
	Finished  time.Time
	Duration  time.Duration
	Rotations int
	// Vehicles lists the registered vehicles in arrival order. After a
	// cancelled run it may be shorter than Cars.
	Vehicles []intersection.Record
}

// Run starts the scheduler and one goroutine per vehicle, waits for every
// vehicle, then stops the scheduler. The result is returned even when err
// is non-nil, covering the vehicles that got as far as the light.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	started := s.now()
	s.logger.Info("simulation started", "cars", len(s.vehicles), "seed", s.seed)

	schedCtx, stopScheduler := context.WithCancel(ctx)
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		_ = s.ix.Scheduler().Run(schedCtx)
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, v := range s.vehicles {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: vehicle %d: %v", ErrVehicleFailed, v.ID, r)
				}
			}()
			return v.Run(gctx, s.ix)
		})
	}
	err := g.Wait()

	stopScheduler()
	<-schedDone

	finished := s.now()
	res := &Result{
		RunID:     s.ID(),
		Seed:      s.seed,
		Cars:      len(s.vehicles),
		Started:   started,
		Finished:  finished,
		Duration:  finished.Sub(started),
		Rotations: s.ix.Light().Rotations(),
		Vehicles:  s.ix.Records(),
	}

	if err != nil {
		s.logger.Error("simulation aborted", "error", err, "registered", len(res.Vehicles))
		return res, err
	}
	s.logger.Info("simulation finished", "duration", res.Duration, "rotations", res.Rotations)
	return res, nil
}
