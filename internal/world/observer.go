package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Observer is an entity that drags a WorldView along as it moves.
type Observer struct {
	world *World
	sink  RenderSink
	main  MainThreadRunner

	position mgl32.Vec3
	view     *WorldView
}

// NewObserver places an observer in w without a view.
func NewObserver(w *World, sink RenderSink, main MainThreadRunner, position mgl32.Vec3) *Observer {
	return &Observer{world: w, sink: sink, main: main, position: position}
}

// Position returns the world-space position.
func (o *Observer) Position() mgl32.Vec3 { return o.position }

// ChunkPosition returns the chunk containing the observer.
func (o *Observer) ChunkPosition() ChunkPos { return ChunkPosAt(o.position) }

// ChunkRelativePosition returns the observer position inside its chunk.
func (o *Observer) ChunkRelativePosition() mgl32.Vec3 {
	return mgl32.Vec3{
		floorMod(o.position.X(), ChunkWorldSize.X()),
		floorMod(o.position.Y(), ChunkWorldSize.Y()),
		floorMod(o.position.Z(), ChunkWorldSize.Z()),
	}
}

// View returns the current world view, or nil.
func (o *Observer) View() *WorldView { return o.view }

// SetPosition moves the observer. The view is recentered whenever its center
// differs from the observer's chunk, so a move the view refused is retried
// on the next call.
func (o *Observer) SetPosition(p mgl32.Vec3) error {
	o.position = p
	if o.view == nil {
		return nil
	}
	if chunk := o.ChunkPosition(); chunk != o.view.Center() {
		return o.view.SetPosition(chunk)
	}
	return nil
}

// Move offsets the observer position.
func (o *Observer) Move(delta mgl32.Vec3) error {
	return o.SetPosition(o.position.Add(delta))
}

// RecreateWorldView replaces the view with one of the given render distance,
// centered on the observer's chunk.
func (o *Observer) RecreateWorldView(renderDistance ChunkPos) (*WorldView, error) {
	if o.view != nil {
		if err := o.view.Close(); err != nil {
			return nil, err
		}
		o.view = nil
	}

	center := o.ChunkPosition()
	o.sink.WorldViewRecreate(center, renderDistance)
	v, err := NewWorldView(o.world, o.sink, o.main, center, renderDistance)
	if err != nil {
		return nil, err
	}
	o.view = v
	return v, nil
}

func floorMod(a, b float32) float32 {
	return a - b*float32(math.Floor(float64(a/b)))
}
