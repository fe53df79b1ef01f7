// Package monitor aggregates in-process operation counters for the metrics
// endpoint: how often each operation ran, how often it failed and how long it
// took on average.
package monitor

import (
	"sync"
	"time"
)

type opStats struct {
	count    int64
	errors   int64
	duration time.Duration
}

// Collector records operation outcomes. Safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	ops   map[string]*opStats
	start time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		ops:   make(map[string]*opStats),
		start: time.Now(),
	}
}

// Record adds one observation for op.
func (c *Collector) Record(op string, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.ops[op]
	if !ok {
		s = &opStats{}
		c.ops[op] = s
	}
	s.count++
	s.duration += d
	if err != nil {
		s.errors++
	}
}

// Observe wraps Record for the common time-then-record pattern: call with the
// operation start time once the operation has finished.
func (c *Collector) Observe(op string, start time.Time, err error) {
	c.Record(op, time.Since(start), err)
}

// OpSummary is the aggregated view of one operation.
type OpSummary struct {
	Count        int64   `json:"count"`
	Errors       int64   `json:"errors"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Summary is a point-in-time snapshot of all recorded operations.
type Summary struct {
	UptimeSeconds float64              `json:"uptime_seconds"`
	Operations    map[string]OpSummary `json:"operations"`
}

// Snapshot returns the current aggregates.
func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := Summary{
		UptimeSeconds: time.Since(c.start).Seconds(),
		Operations:    make(map[string]OpSummary, len(c.ops)),
	}
	for op, s := range c.ops {
		sum := OpSummary{Count: s.count, Errors: s.errors}
		if s.count > 0 {
			sum.AvgLatencyMs = float64(s.duration.Milliseconds()) / float64(s.count)
		}
		out.Operations[op] = sum
	}
	return out
}
