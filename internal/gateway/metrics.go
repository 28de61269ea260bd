package gateway

import "sync/atomic"

// Metrics tracks event stream counters using atomic operations for lock-free concurrency.
type Metrics struct {
	rotations atomic.Int64
	passages  atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	clients   atomic.Int64
}

// RecordRotation counts a rotation event.
func (m *Metrics) RecordRotation() { m.rotations.Add(1) }

// RecordPassage counts a passage event.
func (m *Metrics) RecordPassage() { m.passages.Add(1) }

// RecordDelivery counts an event queued for a client.
func (m *Metrics) RecordDelivery() { m.delivered.Add(1) }

// RecordDrop counts an event dropped because a client queue was full.
func (m *Metrics) RecordDrop() { m.dropped.Add(1) }

// ClientConnected counts a websocket client in.
func (m *Metrics) ClientConnected() { m.clients.Add(1) }

// ClientDisconnected counts a websocket client out.
func (m *Metrics) ClientDisconnected() { m.clients.Add(-1) }

// Snapshot returns a point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Rotations: m.rotations.Load(),
		Passages:  m.passages.Load(),
		Delivered: m.delivered.Load(),
		Dropped:   m.dropped.Load(),
		Clients:   m.clients.Load(),
	}
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Rotations int64 `json:"rotations"`
	Passages  int64 `json:"passages"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
	Clients   int64 `json:"clients"`
}
