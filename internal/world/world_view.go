package world

import (
	"errors"
	"fmt"
	"sync/atomic"

	"voxstream/internal/profiling"
)

// ErrMoveInProgress is returned when a WorldView is moved while a previous
// move on it has not returned yet.
var ErrMoveInProgress = errors.New("world: world view move already in progress")

// WorldView keeps the chunks inside a box around a moving center loaded.
// All methods must be called from the control thread.
type WorldView struct {
	world *World
	sink  RenderSink
	main  MainThreadRunner

	center ChunkPos
	radius ChunkPos

	moving atomic.Bool
	// primed is set after the first move; before that nothing is loaded.
	primed bool
}

// NewWorldView creates a view centered at center and starts loading its whole
// window. Finished chunks are handed to sink through main.
func NewWorldView(w *World, sink RenderSink, main MainThreadRunner, center, renderDistance ChunkPos) (*WorldView, error) {
	if renderDistance.X < 0 || renderDistance.Y < 0 || renderDistance.Z < 0 {
		return nil, fmt.Errorf("world view: negative render distance %v", renderDistance)
	}
	v := &WorldView{
		world:  w,
		sink:   sink,
		main:   main,
		radius: renderDistance,
	}
	// Start from a center whose window does not overlap the real one, so the
	// first move sees every position as entering.
	v.center = center.Add(v.Side())
	if err := v.SetPosition(center); err != nil {
		return nil, err
	}
	return v, nil
}

// Center returns the chunk position the view is centered on.
func (v *WorldView) Center() ChunkPos { return v.center }

// RenderDistance returns the per-axis window radius.
func (v *WorldView) RenderDistance() ChunkPos { return v.radius }

// Side returns the per-axis window size, radius*2+1.
func (v *WorldView) Side() ChunkPos {
	return v.radius.Scale(2).Add(ChunkPos{1, 1, 1})
}

// RelativePosition maps a chunk position into window coordinates, where the
// window spans [0, Side()) per axis.
func (v *WorldView) RelativePosition(pos ChunkPos) ChunkPos {
	return pos.Sub(v.center).Add(v.radius)
}

// ContainsRelative reports whether a window coordinate is inside the window.
func (v *WorldView) ContainsRelative(rel ChunkPos) bool {
	side := v.Side()
	return rel.X >= 0 && rel.X < side.X &&
		rel.Y >= 0 && rel.Y < side.Y &&
		rel.Z >= 0 && rel.Z < side.Z
}

// Contains reports whether pos is inside the window.
func (v *WorldView) Contains(pos ChunkPos) bool {
	return v.ContainsRelative(v.RelativePosition(pos))
}

// IsChunkPositionInside reports whether pos lies in the window of the given
// center and render distance.
func IsChunkPositionInside(center, renderDistance, pos ChunkPos) bool {
	rel := pos.Sub(center).Add(renderDistance)
	side := renderDistance.Scale(2).Add(ChunkPos{1, 1, 1})
	return rel.X >= 0 && rel.X < side.X &&
		rel.Y >= 0 && rel.Y < side.Y &&
		rel.Z >= 0 && rel.Z < side.Z
}

// IterateChunks calls fn for every position in the window of center.
func IterateChunks(center, renderDistance ChunkPos, fn func(ChunkPos)) {
	for dx := -renderDistance.X; dx <= renderDistance.X; dx++ {
		for dy := -renderDistance.Y; dy <= renderDistance.Y; dy++ {
			for dz := -renderDistance.Z; dz <= renderDistance.Z; dz++ {
				fn(center.Add(ChunkPos{dx, dy, dz}))
			}
		}
	}
}

// SetPosition moves the view to center.
func (v *WorldView) SetPosition(center ChunkPos) error {
	return v.OffsetPosition(center.Sub(v.center))
}

// OffsetPosition moves the view by offset. Chunks leaving the window are
// unloaded and their render slots destroyed before the sink is told about the
// new center; entering chunks are then requested asynchronously.
func (v *WorldView) OffsetPosition(offset ChunkPos) error {
	if offset.IsZero() {
		return nil
	}
	if !v.moving.CompareAndSwap(false, true) {
		return ErrMoveInProgress
	}
	defer v.moving.Store(false)
	defer profiling.Track("world.WorldView.OffsetPosition")()

	old := v.center
	v.center = old.Add(offset)

	if v.primed {
		NewDeltaChunkIterator(v.center, old, v.radius, func(pos ChunkPos) {
			v.world.UnloadChunk(pos)
			v.sink.WorldViewDestroyChunk(pos)
		}).Iterate()
	}
	v.primed = true

	// Slots must be released while they still map to the old positions.
	v.sink.WorldViewSetPosition(v.center)

	NewDeltaChunkIterator(old, v.center, v.radius, v.loadChunk).Iterate()
	return nil
}

func (v *WorldView) loadChunk(pos ChunkPos) {
	chunk, created := v.world.LoadChunkAsync(pos, v.chunkReady)
	// A chunk kept loaded by someone else will not call back; hand it over if
	// its geometry is already there.
	if !created && chunk.Surface() != nil {
		v.chunkReady(chunk)
	}
}

// chunkReady runs on a worker; the upload itself happens on the control thread.
func (v *WorldView) chunkReady(c *Chunk) {
	v.main.RunOnMainThread(func() {
		if c.Evicted() {
			return
		}
		// The sink drops chunks that are no longer inside its window.
		v.sink.WorldViewUploadChunk(c)
	})
}

// Close unloads every chunk in the window and destroys its render slot.
func (v *WorldView) Close() error {
	if !v.moving.CompareAndSwap(false, true) {
		return ErrMoveInProgress
	}
	defer v.moving.Store(false)

	IterateChunks(v.center, v.radius, func(pos ChunkPos) {
		v.world.UnloadChunk(pos)
		v.sink.WorldViewDestroyChunk(pos)
	})
	return nil
}
