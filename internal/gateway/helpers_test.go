package gateway

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/intersection/intersectiontest"
)

// fakeSource wraps a real intersection so handlers see live protocol state.
type fakeSource struct {
	id string
	ix *intersection.Intersection
}

func newFakeSource(t *testing.T) *fakeSource {
	t.Helper()
	ix := intersection.New(intersection.Config{
		Random:    &intersectiontest.FixedRandom{},
		Breakdown: intersection.NoBreakdownDelay{Penalty: 2 * time.Second},
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	return &fakeSource{id: "run-test", ix: ix}
}

func (s *fakeSource) ID() string { return s.id }
func (s *fakeSource) Snapshot() intersection.Snapshot { return s.ix.Snapshot() }
func (s *fakeSource) Records() []intersection.Record { return s.ix.Records() }
func (s *fakeSource) AddObserver(obs intersection.Observer) { s.ix.AddObserver(obs) }

func newTestAppContext() *core.AppContext {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return core.NewAppContext(logger, "/data")
}
