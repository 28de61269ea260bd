package intersection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetween_DefaultTravelIsWholeSeconds(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Random:    NewRandom(7),
		TravelMin: time.Second,
		TravelMax: 5 * time.Second,
	}.withDefaults()
	require.Equal(t, time.Second, cfg.TravelStep)

	allowed := map[time.Duration]bool{
		1 * time.Second: true,
		2 * time.Second: true,
		3 * time.Second: true,
		4 * time.Second: true,
		5 * time.Second: true,
	}
	seen := make(map[time.Duration]int)
	for range 500 {
		d := between(cfg.Random, cfg.TravelMin, cfg.TravelMax, cfg.TravelStep)
		require.True(t, allowed[d], "travel %s is not a whole second in [1s, 5s]", d)
		seen[d]++
	}
	assert.Len(t, seen, len(allowed), "every whole second should be drawn")
}

func TestBetween(t *testing.T) {
	t.Parallel()

	rng := NewRandom(3)
	tests := []struct {
		name           string
		lo, hi, step   time.Duration
		wantLo, wantHi time.Duration
	}{
		{"empty range", 2 * time.Second, 2 * time.Second, time.Second, 2 * time.Second, 2 * time.Second},
		{"inverted range", 3 * time.Second, time.Second, time.Second, 3 * time.Second, 3 * time.Second},
		{"step wider than range", 0, 3 * time.Millisecond, time.Second, 0, 0},
		{"millisecond step", 0, 5 * time.Millisecond, time.Millisecond, 0, 5 * time.Millisecond},
		{"no step", time.Second, 5 * time.Second, 0, time.Second, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for range 50 {
				d := between(rng, tt.lo, tt.hi, tt.step)
				assert.GreaterOrEqual(t, d, tt.wantLo)
				assert.LessOrEqual(t, d, tt.wantHi)
				if tt.step > 0 {
					assert.Zero(t, (d-tt.lo)%tt.step, "draw %s is off the %s grid", d, tt.step)
				}
			}
		})
	}
}
