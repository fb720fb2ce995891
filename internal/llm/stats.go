package llm

import (
	"slices"
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// StatsSnapshot is a point-in-time aggregate of latency samples.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

type window struct {
	ok     []sample
	failed []time.Time
}

// Stats tracks model call latencies per operation within a rolling window.
// Failed calls are counted but contribute no latency.
type Stats struct {
	mu     sync.Mutex
	ops    map[string]*window
	maxAge time.Duration
	now    func() time.Time
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		ops:    make(map[string]*window),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Record adds a successful call of the given operation.
func (s *Stats) Record(op string, durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.windowLocked(op)
	s.pruneLocked(w, now)
	w.ok = append(w.ok, sample{timestamp: now, durationMs: durationMs})
}

// RecordError counts a failed call of the given operation.
func (s *Stats) RecordError(op string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.windowLocked(op)
	s.pruneLocked(w, now)
	w.failed = append(w.failed, now)
}

// Snapshot aggregates every operation seen within the window.
func (s *Stats) Snapshot() map[string]StatsSnapshot {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]StatsSnapshot, len(s.ops))
	for op, w := range s.ops {
		s.pruneLocked(w, now)
		if len(w.ok) == 0 && len(w.failed) == 0 {
			delete(s.ops, op)
			continue
		}
		out[op] = aggregate(w)
	}
	return out
}

// Operation aggregates a single operation.
func (s *Stats) Operation(op string) StatsSnapshot {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.ops[op]
	if !ok {
		return StatsSnapshot{}
	}
	s.pruneLocked(w, now)
	return aggregate(w)
}

func (s *Stats) windowLocked(op string) *window {
	w, ok := s.ops[op]
	if !ok {
		w = &window{ok: make([]sample, 0, 64)}
		s.ops[op] = w
	}
	return w
}

func (s *Stats) pruneLocked(w *window, now time.Time) {
	cutoff := now.Add(-s.maxAge)
	w.ok = slices.DeleteFunc(w.ok, func(sm sample) bool { return sm.timestamp.Before(cutoff) })
	w.failed = slices.DeleteFunc(w.failed, func(ts time.Time) bool { return ts.Before(cutoff) })
}

func aggregate(w *window) StatsSnapshot {
	snap := StatsSnapshot{Count: len(w.ok), Errors: len(w.failed)}
	if len(w.ok) == 0 {
		return snap
	}

	values := make([]int64, 0, len(w.ok))
	var sum int64
	for _, sm := range w.ok {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

// percentile interpolates linearly between the closest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	switch {
	case len(sortedValues) == 0:
		return 0
	case pct <= 0:
		return float64(sortedValues[0])
	case pct >= 100:
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	if lower+1 >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[lower+1])
	return lo + (hi-lo)*weight
}
