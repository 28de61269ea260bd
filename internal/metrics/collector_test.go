package metrics

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/simulation"
	"github.com/flemzord/junction/internal/telemetry"
)

func TestCollector_RecordsEvents(t *testing.T) {
	t.Parallel()

	c := NewCollector("junction", false)

	c.OnRotation(intersection.RotationEvent{Direction: intersection.North, Reason: intersection.ReasonTimeout})
	c.OnPassage(intersection.PassageEvent{
		Vehicle: intersection.Record{
			ID: 1, Arrival: intersection.North, Congested: true, BrokenDown: true, LightWait: 1500 * time.Millisecond,
		},
		Occupancy: 3,
	})
	c.OnPassage(intersection.PassageEvent{
		Vehicle:   intersection.Record{ID: 2, Arrival: intersection.North},
		Occupancy: 2,
	})
	c.RecordSample(telemetry.Sample{CPUPercent: 42, MemoryUsedMB: 1024})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.rotations.WithLabelValues("North", "timeout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.passages.WithLabelValues("North")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.congested.WithLabelValues("North")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.breakdowns))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.occupancy.WithLabelValues("North")))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.cpu))
	assert.Equal(t, 1024.0, testutil.ToFloat64(c.memory))

	expected := `
# HELP junction_breakdowns_total Number of broken-down vehicles that got through.
# TYPE junction_breakdowns_total counter
junction_breakdowns_total 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Gatherer(), strings.NewReader(expected), "junction_breakdowns_total"))
}

func TestCollector_RuntimeCollectors(t *testing.T) {
	t.Parallel()

	c := NewCollector("junction", true)
	families, err := c.Gatherer().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "go_") {
			found = true
			break
		}
	}
	assert.True(t, found, "go runtime metrics should be registered")
}

type fakeSubscriber struct {
	observers []intersection.Observer
}

func (f *fakeSubscriber) AddObserver(o intersection.Observer) { f.observers = append(f.observers, o) }

func TestModule_Lifecycle(t *testing.T) {
	t.Parallel()

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("namespace: town"), &node))

	appCtx := core.NewAppContext(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), t.TempDir())
	sub := &fakeSubscriber{}
	appCtx.RegisterService(simulation.ServiceName, sub)

	m := &Module{}
	require.NoError(t, m.Configure(node.Content[0]))
	require.NoError(t, m.Provision(appCtx))
	require.NoError(t, m.Validate())
	require.NoError(t, m.Start())

	_, ok := appCtx.Service("metrics.gatherer")
	assert.True(t, ok)
	require.Len(t, sub.observers, 1)

	sub.observers[0].OnRotation(intersection.RotationEvent{Direction: intersection.West, Reason: intersection.ReasonThreshold})
	assert.Equal(t, 1, testutil.CollectAndCount(m.Collector().rotations, "town_rotations_total"))
}

func TestModule_DefaultsWithoutConfig(t *testing.T) {
	t.Parallel()

	m := &Module{}
	require.NoError(t, m.Provision(core.NewAppContext(nil, t.TempDir())))
	assert.Equal(t, "junction", m.config.Namespace)
	require.NoError(t, m.Start())
}
