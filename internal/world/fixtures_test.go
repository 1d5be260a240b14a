package world

import (
	"sync"
	"sync/atomic"

	"voxstream/internal/surface"
	"voxstream/internal/volume"

	"github.com/go-gl/mathgl/mgl32"
)

// inlineRunner runs every job immediately on the calling goroutine.
type inlineRunner struct{}

func (inlineRunner) RunAsync(job func()) { job() }

// manualRunner holds jobs until step or drain is called.
type manualRunner struct {
	mu   sync.Mutex
	jobs []func()
}

func (r *manualRunner) RunAsync(job func()) {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
}

// step runs the oldest pending job. It reports false when none is pending.
func (r *manualRunner) step() bool {
	r.mu.Lock()
	if len(r.jobs) == 0 {
		r.mu.Unlock()
		return false
	}
	job := r.jobs[0]
	r.jobs = r.jobs[1:]
	r.mu.Unlock()
	job()
	return true
}

func (r *manualRunner) drain() {
	for r.step() {
	}
}

// mainQueue stands in for the control-thread queue.
type mainQueue struct {
	mu   sync.Mutex
	jobs []func()
}

func (q *mainQueue) RunOnMainThread(job func()) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
}

func (q *mainQueue) process() int {
	q.mu.Lock()
	jobs := q.jobs
	q.jobs = nil
	q.mu.Unlock()
	for _, job := range jobs {
		job()
	}
	return len(jobs)
}

// layerGenerator fills the bottom layer of every chunk with grass.
type layerGenerator struct {
	calls atomic.Int32
}

func (g *layerGenerator) GenerateVolume(c *Chunk) {
	g.calls.Add(1)
	for x := 0; x < ChunkSizeX; x++ {
		for z := 0; z < ChunkSizeZ; z++ {
			_ = c.SetBlockAt(x, 0, z, volume.BlockTypeGrass)
		}
	}
}

// quadGenerator emits one quad per chunk that has a volume.
type quadGenerator struct {
	calls atomic.Int32
}

func (g *quadGenerator) Generate(c *Chunk, w *surface.Writer) {
	g.calls.Add(1)
	if !c.HasVolume() {
		return
	}
	o := c.ToWorldPosition(ChunkPos{})
	v := func(dx, dz float32) surface.Vertex {
		return surface.Vertex{Position: o.Add(mgl32.Vec3{dx, 1, dz}), Normal: mgl32.Vec3{0, 1, 0}}
	}
	w.AddQuad(v(0, 0), v(0, 16), v(16, 0), v(16, 16))
	w.AddInstance(surface.Instance{Transform: mgl32.Ident4()})
}

type sinkEvent struct {
	kind string
	pos  ChunkPos
}

// recordingSink logs every call it receives.
type recordingSink struct {
	events []sinkEvent
	onCall func(kind string, pos ChunkPos)
}

func (s *recordingSink) record(kind string, pos ChunkPos) {
	s.events = append(s.events, sinkEvent{kind, pos})
	if s.onCall != nil {
		s.onCall(kind, pos)
	}
}

func (s *recordingSink) WorldViewRecreate(center, rd ChunkPos) { s.record("recreate", center) }
func (s *recordingSink) WorldViewSetPosition(center ChunkPos)  { s.record("position", center) }
func (s *recordingSink) WorldViewUploadChunk(c *Chunk)         { s.record("upload", c.Position()) }
func (s *recordingSink) WorldViewDestroyChunk(pos ChunkPos)    { s.record("destroy", pos) }

func (s *recordingSink) count(kind string) int {
	n := 0
	for _, e := range s.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func (s *recordingSink) reset() { s.events = nil }
