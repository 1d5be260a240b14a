package world

import (
	"fmt"
	"sync/atomic"
	"time"

	"voxstream/internal/profiling"
	"voxstream/internal/sched"
	"voxstream/internal/surface"

	"go.uber.org/zap"
)

// World is the concurrent registry of loaded chunks. It runs the generation
// pipeline (volume, then surface, then the caller's callback) on an
// AsyncRunner, one stage at a time per chunk.
type World struct {
	store *chunkStore

	volumeGen  VolumeGenerator
	surfaceGen SurfaceGenerator
	runner     AsyncRunner
	log        *zap.Logger

	closed atomic.Bool
}

// New creates a world generating chunks with the given generators.
func New(vg VolumeGenerator, sg SurfaceGenerator, runner AsyncRunner, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World{
		store:      newChunkStore(),
		volumeGen:  vg,
		surfaceGen: sg,
		runner:     runner,
		log:        logger.Named("world"),
	}
}

// LoadChunkAsync returns the chunk at pos, creating it if needed. Only the
// call that creates the chunk schedules its generation; onDone is called from
// a worker once the surface is ready, unless the chunk or the world went away
// first.
func (w *World) LoadChunkAsync(pos ChunkPos, onDone func(*Chunk)) (chunk *Chunk, created bool) {
	chunk, created = w.store.getOrCreate(pos)
	if created {
		w.generateAsync(chunk, onDone)
	}
	return chunk, created
}

// UnloadChunk removes the chunk at pos and reports whether it was loaded.
// Pipeline stages still queued for it stop at their next liveness check.
func (w *World) UnloadChunk(pos ChunkPos) bool {
	return w.store.remove(pos)
}

// Chunk returns the loaded chunk at pos, or nil.
func (w *World) Chunk(pos ChunkPos) *Chunk {
	return w.store.get(pos)
}

// Len returns the number of loaded chunks.
func (w *World) Len() int { return w.store.len() }

// Positions returns the loaded chunk positions in a stable order.
func (w *World) Positions() []ChunkPos { return w.store.positions() }

// ModCount increases on every load and unload.
func (w *World) ModCount() uint64 { return w.store.getModCount() }

// Close stops pending pipelines at their next stage boundary.
func (w *World) Close() { w.closed.Store(true) }

func (w *World) alive(c *Chunk) bool {
	return !w.closed.Load() && !c.Evicted()
}

func (w *World) generateAsync(c *Chunk, onDone func(*Chunk)) {
	var chain sched.Chain
	chain.
		Then(func() {
			if !w.alive(c) {
				return
			}
			w.generateVolume(c)
		}).
		Then(func() {
			if !w.alive(c) {
				return
			}
			w.generateSurface(c)
		}).
		Then(func() {
			if !w.alive(c) || onDone == nil {
				return
			}
			onDone(c)
		})
	chain.Dispatch(w.runner)
}

func (w *World) generateVolume(c *Chunk) {
	defer profiling.Track("world.GenerateVolume")()
	start := time.Now()

	w.volumeGen.GenerateVolume(c)

	// Hashing the volume is not free; only pay for it when debug is on.
	if ce := w.log.Check(zap.DebugLevel, "Volume generated"); ce != nil {
		ce.Write(
			zap.Stringer("chunk", c.Position()),
			zap.Duration("dt", time.Since(start)),
			zap.String("digest", fmt.Sprintf("%016x", c.Digest())))
	}
}

func (w *World) generateSurface(c *Chunk) {
	defer profiling.Track("world.GenerateSurface")()
	start := time.Now()

	var s surface.Surface
	w.surfaceGen.Generate(c, surface.NewWriter(&s))
	c.SetSurface(&s)

	w.log.Debug("Surface generated",
		zap.Stringer("chunk", c.Position()),
		zap.Int("vertices", len(s.Vertices)),
		zap.Duration("dt", time.Since(start)))
}
