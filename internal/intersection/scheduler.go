package intersection

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler rotates the light, either as soon as enough vehicles have
// registered or when the intersection has been quiet for too long.
type Scheduler struct {
	c         *Coordinator
	threshold int
	timeout   time.Duration
	pacing    time.Duration
	logger    *slog.Logger
}

func newScheduler(c *Coordinator, cfg Config) *Scheduler {
	return &Scheduler{
		c:         c,
		threshold: cfg.Threshold,
		timeout:   cfg.Timeout,
		pacing:    cfg.Pacing,
		logger:    cfg.Logger.With("component", "scheduler"),
	}
}

// Run loops until ctx is done. It always returns nil; cancellation is the
// normal way to stop it.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Debug("scheduler started", "threshold", s.threshold, "timeout", s.timeout, "pacing", s.pacing)
	defer s.logger.Debug("scheduler stopped")

	for {
		if !s.step(ctx) {
			return nil
		}
		if err := sleep(ctx, s.pacing); err != nil {
			return nil
		}
	}
}

// step makes one rotation decision. It reports false once ctx is done.
func (s *Scheduler) step(ctx context.Context) bool {
	c := s.c

	c.mon.Lock()
	if c.passedSinceRotation >= s.threshold {
		c.passedSinceRotation = 0
		ev := c.light.advanceLocked(ReasonThreshold)
		c.mon.Unlock()

		s.logger.Info("light rotated", "direction", ev.Direction, "reason", ev.Reason)
		c.light.observer.OnRotation(ev)
		return true
	}
	c.mon.Unlock()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	reason := ReasonSignal
	select {
	case <-c.update:
	case <-timer.C:
		reason = ReasonTimeout
		s.logger.Info("no vehicles passed, rotating after timeout", "timeout", s.timeout)
	case <-ctx.Done():
		return false
	}

	ev := c.light.advance(reason)
	c.clearUpdate()
	s.logger.Info("light rotated", "direction", ev.Direction, "reason", ev.Reason)
	return true
}
