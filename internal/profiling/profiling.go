package profiling

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/maps"
)

// Lightweight per-frame CPU profiler for tick-level insights.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	stats       = make(map[string]*Stat)
)

// Stat aggregates every sample recorded under one name.
type Stat struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Total time.Duration
	Last  time.Duration
}

// Avg returns the mean sample duration.
func (s Stat) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

func (s Stat) String() string {
	return fmt.Sprintf("n=%d min=%s max=%s avg=%s last=%s",
		s.Count, formatDur(s.Min), formatDur(s.Max), formatDur(s.Avg()), formatDur(s.Last))
}

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		Record(name, time.Since(start))
	}
}

// Record adds a sample measured elsewhere.
func Record(name string, d time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	frameTotals[name] += d

	s, ok := stats[name]
	if !ok {
		s = &Stat{Min: d}
		stats[name] = s
	}
	s.Count++
	s.Total += d
	s.Last = d
	s.Min = min(s.Min, d)
	s.Max = max(s.Max, d)
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Reset clears frame totals and aggregated stats.
func Reset() {
	mu.Lock()
	clear(frameTotals)
	clear(stats)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// Stats returns a copy of the aggregated stats for name.
func Stats(name string) (Stat, bool) {
	mu.Lock()
	defer mu.Unlock()
	s, ok := stats[name]
	if !ok {
		return Stat{}, false
	}
	return *s, true
}

// Names returns every name that has stats, sorted.
func Names() []string {
	mu.Lock()
	names := maps.Keys(stats)
	mu.Unlock()
	slices.Sort(names)
	return names
}

// TopN formats top N durations from the current frame totals.
// Example: "world.GenerateVolume:4.2ms, world.GenerateSurface:2.1ms"
func TopN(n int) string {
	ss := Snapshot()
	names := maps.Keys(ss)
	slices.SortFunc(names, func(a, b string) int {
		return int(ss[b] - ss[a])
	})
	n = min(n, len(names))
	parts := make([]string, 0, n)
	for _, name := range names[:n] {
		parts = append(parts, name+":"+formatDur(ss[name]))
	}
	return strings.Join(parts, ", ")
}

// keep one decimal for readability
func formatDur(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	return strings.TrimSuffix(fmt.Sprintf("%.1f", ms), ".0") + "ms"
}
