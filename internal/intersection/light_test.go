package intersection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/intersection/intersectiontest"
)

func TestLight_AdvanceNeverRepeatsUntilFull(t *testing.T) {
	t.Parallel()

	for seed := uint64(1); seed <= 25; seed++ {
		ix := intersection.New(intersection.Config{Random: intersection.NewRandom(seed)})
		light := ix.Light()

		for i := range 16 {
			before := light.History()
			d := light.Advance()
			after := light.History()

			if len(before) < 4 {
				assert.NotContains(t, before, d, "seed %d call %d", seed, i)
				assert.Len(t, after, len(before)+1)
			} else {
				assert.Equal(t, []intersection.Direction{d}, after, "full history must be cleared before choosing")
			}
			assert.Equal(t, d, light.Permitted())
			assert.Equal(t, d, after[len(after)-1])
			assert.Len(t, uniq(after), len(after), "history must not hold duplicates")
		}
		assert.Equal(t, 16, light.Rotations())
	}
}

func TestLight_AdvanceDeterministicOrder(t *testing.T) {
	t.Parallel()

	ix := intersection.New(intersection.Config{Random: &intersectiontest.FixedRandom{}})
	light := ix.Light()

	assert.Equal(t, intersection.Direction(0), light.Permitted())

	var got []intersection.Direction
	for range 5 {
		got = append(got, light.Advance())
	}
	want := []intersection.Direction{
		intersection.North, intersection.South, intersection.East, intersection.West, intersection.North,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []intersection.Direction{intersection.North}, light.History())
}

func TestLight_AdvanceNotifiesObservers(t *testing.T) {
	t.Parallel()

	ix := intersection.New(intersection.Config{Random: &intersectiontest.FixedRandom{}})
	obs := intersectiontest.NewRecordingObserver()
	ix.AddObserver(obs)

	ix.Light().Advance()
	ix.Light().Advance()

	rot := obs.Rotations()
	require.Len(t, rot, 2)
	assert.Equal(t, 1, rot[0].Seq)
	assert.Equal(t, intersection.ReasonManual, rot[0].Reason)
	assert.Equal(t, intersection.North, rot[1].Previous)
	assert.Equal(t, intersection.South, rot[1].Direction)
	assert.Equal(t, []intersection.Direction{intersection.North, intersection.South}, rot[1].History)
}

func TestLight_WaitUntilPermitted_WakesOnMatchingRotation(t *testing.T) {
	t.Parallel()

	ix := intersection.New(intersection.Config{Random: &intersectiontest.FixedRandom{}})
	light := ix.Light()

	done := make(chan error, 1)
	go func() { done <- light.WaitUntilPermitted(context.Background(), intersection.South) }()

	light.Advance() // North
	select {
	case err := <-done:
		t.Fatalf("waiter returned before South was permitted: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	light.Advance() // South
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken when South was permitted")
	}
}

func TestLight_WaitUntilPermitted_WakesEveryWaiter(t *testing.T) {
	t.Parallel()

	ix := intersection.New(intersection.Config{Random: intersection.NewRandom(7)})
	light := ix.Light()

	done := make(chan intersection.Direction, 4)
	for _, d := range intersection.Directions() {
		go func() {
			if err := light.WaitUntilPermitted(context.Background(), d); err == nil {
				done <- d
			}
		}()
	}

	seen := map[intersection.Direction]bool{}
	for range 4 {
		// Let the waiters park before each rotation.
		time.Sleep(10 * time.Millisecond)
		light.Advance()
	}
	for range 4 {
		select {
		case d := <-done:
			seen[d] = true
		case <-time.After(time.Second):
			t.Fatalf("only %d of 4 waiters woke", len(seen))
		}
	}
	assert.Len(t, seen, 4)
}

func TestLight_WaitUntilPermitted_ContextCancel(t *testing.T) {
	t.Parallel()

	ix := intersection.New(intersection.Config{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ix.Light().WaitUntilPermitted(ctx, intersection.West) }()

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("waiter ignored cancellation")
	}
}

func uniq(ds []intersection.Direction) map[intersection.Direction]struct{} {
	m := make(map[intersection.Direction]struct{}, len(ds))
	for _, d := range ds {
		m[d] = struct{}{}
	}
	return m
}
