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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	var c Counter
	c.Inc()
	c.Add(4)
	assert.Equal(t, int64(5), c.Value())
	c.Reset()
	assert.Equal(t, int64(0), c.Value())
}

func TestCounterConcurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), c.Value())
}

func TestGauge(t *testing.T) {
	var g Gauge
	g.Inc()
	g.Inc()
	g.Dec()
	assert.Equal(t, int64(1), g.Value())
	g.Set(7)
	assert.Equal(t, int64(7), g.Value())
}

func TestLatencyHistogram(t *testing.T) {
	h := NewLatencyHistogram()

	stats := h.Stats()
	assert.Equal(t, int64(0), stats.Count)
	assert.Equal(t, time.Duration(0), stats.Avg)

	h.Record(500 * time.Microsecond)
	h.Record(3 * time.Millisecond)
	h.Record(3 * time.Millisecond)
	h.Record(2 * time.Second)

	stats = h.Stats()
	assert.Equal(t, int64(4), stats.Count)
	assert.Equal(t, 500*time.Microsecond, stats.Min)
	assert.Equal(t, 2*time.Second, stats.Max)
	assert.Equal(t, (2*time.Second+6*time.Millisecond+500*time.Microsecond)/4, stats.Avg)

	assert.Len(t, stats.Buckets, len(latencyBounds)+1)
	assert.Equal(t, int64(1), stats.Buckets[0])
	assert.Equal(t, int64(2), stats.Buckets[1])
	assert.Equal(t, int64(1), stats.Buckets[len(latencyBounds)])

	// a value on a bound lands in the next bucket
	h.Record(time.Millisecond)
	assert.Equal(t, int64(3), h.Stats().Buckets[1])

	h.Reset()
	stats = h.Stats()
	assert.Equal(t, int64(0), stats.Count)
	assert.Equal(t, make([]int64, len(latencyBounds)+1), stats.Buckets)
}

func TestMetricsSnapshotAndReset(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, m.startTime, m.LastActivity())

	m.CallsSent.Add(3)
	m.CallsSucceeded.Add(2)
	m.CallsFailed.Inc()
	m.FaultsReceived.Inc()
	m.EntitiesDecoded.Add(10)
	m.EntitiesSkipped.Inc()
	m.CallLatency.Record(2 * time.Millisecond)
	m.RecordActivity()

	s := m.Snapshot()
	assert.Equal(t, int64(3), s.CallsSent)
	assert.Equal(t, int64(2), s.CallsSucceeded)
	assert.Equal(t, int64(1), s.CallsFailed)
	assert.Equal(t, int64(1), s.FaultsReceived)
	assert.Equal(t, int64(10), s.EntitiesDecoded)
	assert.Equal(t, int64(1), s.EntitiesSkipped)
	assert.Equal(t, int64(1), s.Latency.Count)
	assert.False(t, s.LastActivity.Before(m.startTime))

	m.Reset()
	s = m.Snapshot()
	assert.Equal(t, int64(0), s.CallsSent)
	assert.Equal(t, int64(0), s.EntitiesDecoded)
	assert.Equal(t, int64(0), s.Latency.Count)
	assert.Equal(t, m.startTime, s.LastActivity)
}
