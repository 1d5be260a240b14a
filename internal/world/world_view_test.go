package world

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func newTestView(t *testing.T, runner AsyncRunner, rd ChunkPos) (*World, *WorldView, *recordingSink, *mainQueue) {
	t.Helper()
	w := New(&layerGenerator{}, &quadGenerator{}, runner, zap.NewNop())
	sink := &recordingSink{}
	q := &mainQueue{}
	v, err := NewWorldView(w, sink, q, ChunkPos{}, rd)
	if err != nil {
		t.Fatal(err)
	}
	return w, v, sink, q
}

func TestWorldViewInitialLoad(t *testing.T) {
	w, v, sink, q := newTestView(t, inlineRunner{}, ChunkPos{1, 0, 1})

	if got := w.Len(); got != 9 {
		t.Fatalf("loaded chunks: got %d, want 9", got)
	}
	if got := q.process(); got != 9 {
		t.Fatalf("queued uploads: got %d, want 9", got)
	}
	if got := sink.count("upload"); got != 9 {
		t.Fatalf("uploads: got %d, want 9", got)
	}
	for _, p := range w.Positions() {
		if !v.Contains(p) {
			t.Fatalf("loaded chunk %v outside the window", p)
		}
	}
}

func TestWorldViewInitialLoadDestroysNothing(t *testing.T) {
	w, _, sink, _ := newTestView(t, inlineRunner{}, ChunkPos{1, 0, 1})
	if got := sink.count("destroy"); got != 0 {
		t.Fatalf("destroys while creating the view: got %d, want 0", got)
	}
	if got := sink.count("position"); got != 1 {
		t.Fatalf("position events: got %d, want 1", got)
	}
	if w.ModCount() != 9 {
		t.Fatalf("mod count: got %d, want 9 loads and no unloads", w.ModCount())
	}
}

func TestWorldViewMoveOneColumn(t *testing.T) {
	w, v, sink, q := newTestView(t, inlineRunner{}, ChunkPos{1, 0, 1})
	q.process()
	sink.reset()

	if err := v.SetPosition(ChunkPos{1, 0, 0}); err != nil {
		t.Fatal(err)
	}

	// Three destroys of the x = -1 column, then the new center.
	if len(sink.events) != 4 {
		t.Fatalf("sink events before uploads: got %v", sink.events)
	}
	for i := 0; i < 3; i++ {
		e := sink.events[i]
		if e.kind != "destroy" || e.pos.X != -1 {
			t.Fatalf("event %d: got %+v, want destroy at x = -1", i, e)
		}
	}
	if e := sink.events[3]; e.kind != "position" || e.pos != (ChunkPos{1, 0, 0}) {
		t.Fatalf("event 3: got %+v, want position (1, 0, 0)", e)
	}

	if got := q.process(); got != 3 {
		t.Fatalf("uploads queued: got %d, want 3", got)
	}
	for _, e := range sink.events[4:] {
		if e.kind != "upload" || e.pos.X != 2 {
			t.Fatalf("unexpected event after move: %+v", e)
		}
	}

	want := windowSet(ChunkPos{1, 0, 0}, ChunkPos{1, 0, 1})
	got := w.Positions()
	if len(got) != len(want) {
		t.Fatalf("loaded: got %d chunks, want %d", len(got), len(want))
	}
	for _, p := range got {
		if !want[p] {
			t.Fatalf("chunk %v loaded outside the window", p)
		}
	}
}

func TestWorldViewZeroMove(t *testing.T) {
	_, v, sink, _ := newTestView(t, inlineRunner{}, ChunkPos{1, 1, 1})
	sink.reset()
	if err := v.SetPosition(v.Center()); err != nil {
		t.Fatal(err)
	}
	if len(sink.events) != 0 {
		t.Fatalf("zero move produced events: %v", sink.events)
	}
}

func TestWorldViewRejectsReentrantMove(t *testing.T) {
	_, v, sink, _ := newTestView(t, inlineRunner{}, ChunkPos{1, 0, 1})

	var nested error
	sink.onCall = func(kind string, _ ChunkPos) {
		if kind == "destroy" && nested == nil {
			nested = v.SetPosition(ChunkPos{10, 0, 10})
		}
	}
	if err := v.SetPosition(ChunkPos{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(nested, ErrMoveInProgress) {
		t.Fatalf("nested move: got %v, want ErrMoveInProgress", nested)
	}
	if v.Center() != (ChunkPos{1, 0, 0}) {
		t.Fatalf("center: got %v, want (1, 0, 0)", v.Center())
	}
}

func TestWorldViewDropsEvictedUploads(t *testing.T) {
	r := &manualRunner{}
	w, v, sink, q := newTestView(t, r, ChunkPos{1, 0, 1})
	r.drain()

	// Uploads are queued; jump away before the control thread runs them.
	if err := v.SetPosition(ChunkPos{100, 0, 0}); err != nil {
		t.Fatal(err)
	}
	sink.reset()
	q.process()
	if got := sink.count("upload"); got != 0 {
		t.Fatalf("evicted chunks uploaded: %d", got)
	}

	r.drain()
	q.process()
	if got := sink.count("upload"); got != 9 {
		t.Fatalf("uploads at the new center: got %d, want 9", got)
	}
	if w.Len() != 9 {
		t.Fatalf("loaded chunks: got %d, want 9", w.Len())
	}
}

func TestWorldViewHelpers(t *testing.T) {
	_, v, _, _ := newTestView(t, &manualRunner{}, ChunkPos{2, 1, 3})
	if got := v.Side(); got != (ChunkPos{5, 3, 7}) {
		t.Fatalf("side: got %v", got)
	}
	if got := v.RelativePosition(ChunkPos{-2, -1, -3}); got != (ChunkPos{}) {
		t.Fatalf("relative position of window corner: got %v", got)
	}
	if !v.Contains(ChunkPos{2, 1, 3}) || v.Contains(ChunkPos{3, 0, 0}) {
		t.Fatal("Contains disagrees with the window bounds")
	}
	if !IsChunkPositionInside(ChunkPos{}, ChunkPos{2, 1, 3}, ChunkPos{-2, 1, 3}) {
		t.Fatal("IsChunkPositionInside rejected a corner")
	}
}

func TestObserverMovesViewOnChunkChange(t *testing.T) {
	w := New(&layerGenerator{}, &quadGenerator{}, inlineRunner{}, nil)
	sink := &recordingSink{}
	q := &mainQueue{}
	o := NewObserver(w, sink, q, mgl32.Vec3{8, 10, 8})

	v, err := o.RecreateWorldView(ChunkPos{1, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if sink.events[0].kind != "recreate" {
		t.Fatalf("first event: got %+v, want recreate", sink.events[0])
	}

	_ = o.Move(mgl32.Vec3{4, 0, 0}) // still in chunk (0, 0, 0)
	if v.Center() != (ChunkPos{}) {
		t.Fatalf("view moved inside a chunk: %v", v.Center())
	}
	_ = o.Move(mgl32.Vec3{-20, 0, 0}) // x = -8
	if v.Center() != (ChunkPos{-1, 0, 0}) {
		t.Fatalf("view center: got %v, want (-1, 0, 0)", v.Center())
	}
	if rel := o.ChunkRelativePosition(); rel.X() != 8 {
		t.Fatalf("chunk relative x: got %v, want 8", rel.X())
	}
}

func TestObserverCatchesUpAfterRefusedMove(t *testing.T) {
	w := New(&layerGenerator{}, &quadGenerator{}, inlineRunner{}, nil)
	sink := &recordingSink{}
	q := &mainQueue{}
	o := NewObserver(w, sink, q, mgl32.Vec3{8, 10, 8})
	v, err := o.RecreateWorldView(ChunkPos{1, 0, 1})
	if err != nil {
		t.Fatal(err)
	}

	var nested error
	sink.onCall = func(kind string, _ ChunkPos) {
		if kind == "destroy" && nested == nil {
			nested = o.Move(mgl32.Vec3{16, 0, 0})
		}
	}
	if err := o.Move(mgl32.Vec3{16, 0, 0}); err != nil {
		t.Fatal(err)
	}
	sink.onCall = nil
	if !errors.Is(nested, ErrMoveInProgress) {
		t.Fatalf("nested move: got %v, want ErrMoveInProgress", nested)
	}
	if o.ChunkPosition() != (ChunkPos{2, 0, 0}) || v.Center() != (ChunkPos{1, 0, 0}) {
		t.Fatalf("observer chunk %v, view center %v", o.ChunkPosition(), v.Center())
	}

	// A move that stays inside the observer's chunk still recenters the view.
	if err := o.Move(mgl32.Vec3{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if v.Center() != o.ChunkPosition() {
		t.Fatalf("view center %v, observer chunk %v", v.Center(), o.ChunkPosition())
	}
}

func TestObserverRecreateReleasesOldWindow(t *testing.T) {
	w := New(&layerGenerator{}, &quadGenerator{}, inlineRunner{}, nil)
	sink := &recordingSink{}
	q := &mainQueue{}
	o := NewObserver(w, sink, q, mgl32.Vec3{})

	if _, err := o.RecreateWorldView(ChunkPos{2, 0, 2}); err != nil {
		t.Fatal(err)
	}
	if w.Len() != 25 {
		t.Fatalf("loaded: got %d, want 25", w.Len())
	}
	if _, err := o.RecreateWorldView(ChunkPos{1, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if w.Len() != 9 {
		t.Fatalf("loaded after shrinking: got %d, want 9", w.Len())
	}
}

func TestChunkPosAtNegative(t *testing.T) {
	tests := []struct {
		p    mgl32.Vec3
		want ChunkPos
	}{
		{mgl32.Vec3{0, 0, 0}, ChunkPos{0, 0, 0}},
		{mgl32.Vec3{-0.5, 10, 17}, ChunkPos{-1, 0, 1}},
		{mgl32.Vec3{-16, 256, -16.01}, ChunkPos{-1, 1, -2}},
	}
	for _, tt := range tests {
		if got := ChunkPosAt(tt.p); got != tt.want {
			t.Errorf("ChunkPosAt(%v): got %v, want %v", tt.p, got, tt.want)
		}
	}
}
