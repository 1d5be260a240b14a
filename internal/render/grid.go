package render

import (
	"errors"
	"fmt"

	"voxstream/internal/world"
)

// ErrOutsideWindow is returned for ring access with a window coordinate
// outside [0, side).
var ErrOutsideWindow = errors.New("render: position outside the grid window")

// Pixel records where a chunk's geometry lives in the shared buffers. Offsets
// are in elements, not bytes. A zero IndexCount marks the cell as empty.
type Pixel struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}

// Valid reports whether the cell references geometry.
func (p Pixel) Valid() bool { return p.IndexCount != 0 }

// CircularGrid is a fixed-size 3D ring of Pixels. Moving the window rotates
// the ring origin; stored cells never move.
type CircularGrid struct {
	side  world.ChunkPos
	start world.ChunkPos
	cells []Pixel
}

// NewCircularGrid creates an empty ring with side cells per axis.
func NewCircularGrid(side world.ChunkPos) *CircularGrid {
	return &CircularGrid{
		side:  side,
		cells: make([]Pixel, side.X*side.Y*side.Z),
	}
}

// Side returns the ring dimensions.
func (g *CircularGrid) Side() world.ChunkPos { return g.side }

// Start returns the current ring origin.
func (g *CircularGrid) Start() world.ChunkPos { return g.start }

func (g *CircularGrid) inside(rel world.ChunkPos) bool {
	return rel.X >= 0 && rel.X < g.side.X &&
		rel.Y >= 0 && rel.Y < g.side.Y &&
		rel.Z >= 0 && rel.Z < g.side.Z
}

// physical maps a window coordinate to its ring cell.
func (g *CircularGrid) physical(rel world.ChunkPos) world.ChunkPos {
	return world.PmodPos(g.start.Add(rel), g.side)
}

func (g *CircularGrid) cellIndex(p world.ChunkPos) int {
	return p.Y*(g.side.X*g.side.Z) + p.X*g.side.Z + p.Z
}

func (g *CircularGrid) index(rel world.ChunkPos) (int, error) {
	if !g.inside(rel) {
		return 0, fmt.Errorf("window coordinate %v, side %v: %w", rel, g.side, ErrOutsideWindow)
	}
	return g.cellIndex(g.physical(rel)), nil
}

// Read returns the cell at a window coordinate.
func (g *CircularGrid) Read(rel world.ChunkPos) (Pixel, error) {
	i, err := g.index(rel)
	if err != nil {
		return Pixel{}, err
	}
	return g.cells[i], nil
}

// Write stores p at a window coordinate.
func (g *CircularGrid) Write(rel world.ChunkPos, p Pixel) error {
	i, err := g.index(rel)
	if err != nil {
		return err
	}
	g.cells[i] = p
	return nil
}

// Invalidate clears the cell at a window coordinate.
func (g *CircularGrid) Invalidate(rel world.ChunkPos) error {
	return g.Write(rel, Pixel{})
}

// Shift moves the ring origin by offset. No cell is touched.
func (g *CircularGrid) Shift(offset world.ChunkPos) {
	g.start = world.PmodPos(g.start.Add(offset), g.side)
}

// ValidCount returns how many cells reference geometry.
func (g *CircularGrid) ValidCount() int {
	n := 0
	for _, c := range g.cells {
		if c.Valid() {
			n++
		}
	}
	return n
}

// Each calls fn for every valid cell with its window coordinate.
func (g *CircularGrid) Each(fn func(rel world.ChunkPos, p Pixel)) {
	for y := 0; y < g.side.Y; y++ {
		for x := 0; x < g.side.X; x++ {
			for z := 0; z < g.side.Z; z++ {
				rel := world.ChunkPos{X: x, Y: y, Z: z}
				if p := g.cells[g.cellIndex(g.physical(rel))]; p.Valid() {
					fn(rel, p)
				}
			}
		}
	}
}

// PackedExtent returns the image size matching Packed: X is doubled because
// each cell takes two texels.
func (g *CircularGrid) PackedExtent() (w, h, d int) {
	return g.side.X * 2, g.side.Y, g.side.Z
}

// Packed lays the ring out as an RGBA32UI 3D image in physical cell order.
// Texel (2x, y, z) holds {indexCount, instanceCount, firstIndex, vertexOffset}
// and texel (2x+1, y, z) holds {firstInstance, 1, 2, 3}.
func (g *CircularGrid) Packed() []uint32 {
	w, h, _ := g.PackedExtent()
	out := make([]uint32, len(g.cells)*8)
	for y := 0; y < g.side.Y; y++ {
		for x := 0; x < g.side.X; x++ {
			for z := 0; z < g.side.Z; z++ {
				p := g.cells[g.cellIndex(world.ChunkPos{X: x, Y: y, Z: z})]
				t := ((z*h+y)*w + 2*x) * 4
				copy(out[t:t+8], []uint32{
					p.IndexCount, p.InstanceCount, p.FirstIndex, uint32(p.VertexOffset),
					p.FirstInstance, 1, 2, 3,
				})
			}
		}
	}
	return out
}
