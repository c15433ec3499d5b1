// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package homematic

import (
	"sync"
	"sync/atomic"
	"time"
)

// Counter is a monotonically increasing counter safe for concurrent use
type Counter struct {
	v atomic.Int64
}

// Add adds delta to the counter
func (c *Counter) Add(delta int64) { c.v.Add(delta) }

// Inc increments the counter by 1
func (c *Counter) Inc() { c.v.Add(1) }

// Value returns the current counter value
func (c *Counter) Value() int64 { return c.v.Load() }

// Reset sets the counter back to 0
func (c *Counter) Reset() { c.v.Store(0) }

// Gauge is a value that can go up and down, safe for concurrent use
type Gauge struct {
	v atomic.Int64
}

func (g *Gauge) Set(value int64) { g.v.Store(value) }
func (g *Gauge) Inc()            { g.v.Add(1) }
func (g *Gauge) Dec()            { g.v.Add(-1) }
func (g *Gauge) Value() int64    { return g.v.Load() }

// latencyBounds are the upper bounds of the histogram buckets. A final
// bucket collects everything slower.
var latencyBounds = []time.Duration{
	time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
}

// LatencyHistogram tracks call round trip times
type LatencyHistogram struct {
	mu      sync.Mutex
	count   int64
	sum     time.Duration
	min     time.Duration
	max     time.Duration
	buckets []int64
}

// NewLatencyHistogram creates an empty histogram
func NewLatencyHistogram() *LatencyHistogram {
	return &LatencyHistogram{
		buckets: make([]int64, len(latencyBounds)+1),
	}
}

// Record adds one measurement
func (h *LatencyHistogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 || d < h.min {
		h.min = d
	}
	if d > h.max {
		h.max = d
	}
	h.count++
	h.sum += d

	i := 0
	for i < len(latencyBounds) && d >= latencyBounds[i] {
		i++
	}
	h.buckets[i]++
}

// Stats returns a copy of the current statistics
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := LatencyStats{
		Count:   h.count,
		Buckets: append([]int64(nil), h.buckets...),
	}
	if h.count > 0 {
		stats.Min = h.min
		stats.Max = h.max
		stats.Avg = h.sum / time.Duration(h.count)
	}
	return stats
}

// Reset clears all measurements
func (h *LatencyHistogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count, h.sum, h.min, h.max = 0, 0, 0, 0
	clear(h.buckets)
}

// LatencyStats summarizes a LatencyHistogram
type LatencyStats struct {
	Count   int64
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Buckets []int64
}

// Metrics holds client metrics
type Metrics struct {
	// Calls
	CallsSent      Counter
	CallsSucceeded Counter
	CallsFailed    Counter
	FaultsReceived Counter

	// Decoding
	DecodeFailures  Counter
	EntitiesDecoded Counter
	EntitiesSkipped Counter

	CallLatency *LatencyHistogram
	ActiveCalls Gauge

	startTime    time.Time
	lastActivity atomic.Int64
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		CallLatency: NewLatencyHistogram(),
		startTime:   time.Now(),
	}
}

// RecordActivity marks now as the last activity time
func (m *Metrics) RecordActivity() {
	m.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity returns the time of the last call, or the start time when no
// call was made yet
func (m *Metrics) LastActivity() time.Time {
	ns := m.lastActivity.Load()
	if ns == 0 {
		return m.startTime
	}
	return time.Unix(0, ns)
}

// Uptime returns the time since the metrics were created or reset
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Reset zeroes every metric
func (m *Metrics) Reset() {
	for _, c := range []*Counter{
		&m.CallsSent, &m.CallsSucceeded, &m.CallsFailed, &m.FaultsReceived,
		&m.DecodeFailures, &m.EntitiesDecoded, &m.EntitiesSkipped,
	} {
		c.Reset()
	}
	m.CallLatency.Reset()
	m.ActiveCalls.Set(0)
	m.startTime = time.Now()
	m.lastActivity.Store(0)
}

// Snapshot returns a point-in-time copy of the metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime:          m.Uptime(),
		CallsSent:       m.CallsSent.Value(),
		CallsSucceeded:  m.CallsSucceeded.Value(),
		CallsFailed:     m.CallsFailed.Value(),
		FaultsReceived:  m.FaultsReceived.Value(),
		DecodeFailures:  m.DecodeFailures.Value(),
		EntitiesDecoded: m.EntitiesDecoded.Value(),
		EntitiesSkipped: m.EntitiesSkipped.Value(),
		Latency:         m.CallLatency.Stats(),
		ActiveCalls:     m.ActiveCalls.Value(),
		LastActivity:    m.LastActivity(),
	}
}

// MetricsSnapshot is a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	Uptime time.Duration

	CallsSent      int64
	CallsSucceeded int64
	CallsFailed    int64
	FaultsReceived int64

	DecodeFailures  int64
	EntitiesDecoded int64
	EntitiesSkipped int64

	Latency     LatencyStats
	ActiveCalls int64

	LastActivity time.Time
}
