// Package metrics exports intersection activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/flemzord/junction/internal/intersection"
	"github.com/flemzord/junction/internal/telemetry"
)

// Collector owns a private registry and turns intersection events into
// metrics. It is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	rotations  *prometheus.CounterVec
	passages   *prometheus.CounterVec
	congested  *prometheus.CounterVec
	breakdowns prometheus.Counter
	lightWait  prometheus.Histogram
	occupancy  *prometheus.GaugeVec
	cpu        prometheus.Gauge
	memory     prometheus.Gauge
}

// Compile-time interface check.
var _ intersection.Observer = (*Collector)(nil)

// NewCollector registers every metric under namespace in a fresh registry.
// With withRuntime set, Go runtime and process collectors are added too.
func NewCollector(namespace string, withRuntime bool) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_total",
			Help:      "Number of traffic light rotations, by newly permitted direction.",
		}, []string{"direction", "reason"}),
		passages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passages_total",
			Help:      "Number of vehicles through the intersection, by arrival direction.",
		}, []string{"direction"}),
		congested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "congested_total",
			Help:      "Number of vehicles that met heavy traffic, by arrival direction.",
		}, []string{"direction"}),
		breakdowns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breakdowns_total",
			Help:      "Number of broken-down vehicles that got through.",
		}),
		lightWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "light_wait_seconds",
			Help:      "Time vehicles waited at the light between registration and grant.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 3, 5, 8, 13, 21},
		}),
		occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "occupancy",
			Help:      "Vehicles queued on an approach, sampled at each grant.",
		}, []string{"direction"}),
		cpu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "Host CPU usage at the last telemetry sample.",
		}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_memory_mb",
			Help:      "Host memory in use, in MB, at the last telemetry sample.",
		}),
	}

	c.registry.MustRegister(
		c.rotations, c.passages, c.congested, c.breakdowns,
		c.lightWait, c.occupancy, c.cpu, c.memory,
	)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// Gatherer returns the registry for exposition.
func (c *Collector) Gatherer() prometheus.Gatherer { return c.registry }

// OnRotation implements intersection.Observer.
func (c *Collector) OnRotation(ev intersection.RotationEvent) {
	c.rotations.WithLabelValues(ev.Direction.String(), string(ev.Reason)).Inc()
}

// OnPassage implements intersection.Observer.
func (c *Collector) OnPassage(ev intersection.PassageEvent) {
	dir := ev.Vehicle.Arrival.String()
	c.passages.WithLabelValues(dir).Inc()
	if ev.Vehicle.Congested {
		c.congested.WithLabelValues(dir).Inc()
	}
	if ev.Vehicle.BrokenDown {
		c.breakdowns.Inc()
	}
	c.lightWait.Observe(ev.Vehicle.LightWait.Seconds())
	// The granted vehicle leaves right after the sample.
	c.occupancy.WithLabelValues(dir).Set(float64(ev.Occupancy - 1))
}

// RecordSample stores the latest host telemetry reading.
func (c *Collector) RecordSample(s telemetry.Sample) {
	c.cpu.Set(s.CPUPercent)
	c.memory.Set(s.MemoryUsedMB)
}
