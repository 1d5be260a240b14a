package profiling

import (
	"testing"
	"time"
)

func TestRecordAggregates(t *testing.T) {
	Reset()
	Record("a", 3*time.Millisecond)
	Record("a", 1*time.Millisecond)
	Record("a", 2*time.Millisecond)

	s, ok := Stats("a")
	if !ok {
		t.Fatal("missing stats")
	}
	if s.Count != 3 || s.Min != time.Millisecond || s.Max != 3*time.Millisecond || s.Last != 2*time.Millisecond {
		t.Fatalf("stats: got %+v", s)
	}
	if s.Avg() != 2*time.Millisecond {
		t.Fatalf("avg: got %s, want 2ms", s.Avg())
	}
}

func TestResetFrameKeepsStats(t *testing.T) {
	Reset()
	Record("b", time.Millisecond)
	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Fatal("frame totals not cleared")
	}
	if _, ok := Stats("b"); !ok {
		t.Fatal("stats must survive a frame reset")
	}
}

func TestTopN(t *testing.T) {
	Reset()
	Record("slow", 4200*time.Microsecond)
	Record("fast", 1*time.Millisecond)
	Record("mid", 2100*time.Microsecond)

	if got, want := TopN(2), "slow:4.2ms, mid:2.1ms"; got != want {
		t.Fatalf("TopN(2): got %q, want %q", got, want)
	}
	if got, want := TopN(10), "slow:4.2ms, mid:2.1ms, fast:1ms"; got != want {
		t.Fatalf("TopN(10): got %q, want %q", got, want)
	}
}

func TestTrack(t *testing.T) {
	Reset()
	stop := Track("op")
	stop()
	if _, ok := Stats("op"); !ok {
		t.Fatal("Track did not record")
	}
	if names := Names(); len(names) != 1 || names[0] != "op" {
		t.Fatalf("names: got %v", names)
	}
}
