package meshing

import (
	"voxstream/internal/surface"
	"voxstream/internal/volume"
	"voxstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

var gridDims = [3]int{world.ChunkSizeX, world.ChunkSizeY, world.ChunkSizeZ}

// BlockyGenerator turns a chunk volume into greedy-merged cube faces. Faces are
// emitted against air and against the chunk border; neighbouring chunks are
// not consulted.
type BlockyGenerator struct{}

// NewBlockyGenerator returns a surface generator for cube terrain.
func NewBlockyGenerator() *BlockyGenerator { return &BlockyGenerator{} }

// Generate writes the chunk geometry in world space plus a single identity
// instance. Chunks without solid blocks produce nothing.
func (g *BlockyGenerator) Generate(c *world.Chunk, w *surface.Writer) {
	grid, solid := denseGrid(c)
	if !solid {
		return
	}

	origin := c.ToWorldPosition(world.ChunkPos{})
	quads := 0
	for d := 0; d < 3; d++ {
		quads += buildGreedyForAxis(grid, origin, d, +1, w)
		quads += buildGreedyForAxis(grid, origin, d, -1, w)
	}
	if quads > 0 {
		w.AddInstance(surface.Instance{Transform: mgl32.Ident4()})
	}
}

func gridIndex(x, y, z int) int {
	return (y*world.ChunkSizeX+x)*world.ChunkSizeZ + z
}

func at(grid []volume.BlockType, p [3]int) volume.BlockType {
	for i := range p {
		if p[i] < 0 || p[i] >= gridDims[i] {
			return volume.BlockTypeAir
		}
	}
	return grid[gridIndex(p[0], p[1], p[2])]
}

// denseGrid expands the octree leaves covering the chunk into a flat array.
func denseGrid(c *world.Chunk) ([]volume.BlockType, bool) {
	var grid []volume.BlockType
	c.WithVolume(func(o *volume.Octree) {
		if o == nil {
			return
		}
		o.Traverse(func(v volume.BlockType, level int, code uint32) {
			x0, y0, z0 := volume.Decode(code)
			side := o.LeafSide(level)
			if x0 >= world.ChunkSizeX || y0 >= world.ChunkSizeY || z0 >= world.ChunkSizeZ {
				return
			}
			if grid == nil {
				grid = make([]volume.BlockType, world.ChunkSizeX*world.ChunkSizeY*world.ChunkSizeZ)
			}
			for y := y0; y < min(y0+side, world.ChunkSizeY); y++ {
				for x := x0; x < min(x0+side, world.ChunkSizeX); x++ {
					for z := z0; z < min(z0+side, world.ChunkSizeZ); z++ {
						grid[gridIndex(x, y, z)] = v
					}
				}
			}
		})
	})
	return grid, grid != nil
}

// buildGreedyForAxis meshes every face whose normal is sign along axis d.
// Layers are swept along d; each layer gets a UxV mask of visible face types
// which is merged into maximal rectangles of the same type.
func buildGreedyForAxis(grid []volume.BlockType, origin mgl32.Vec3, d, sign int, w *surface.Writer) int {
	u, v := (d+1)%3, (d+2)%3
	su, sv := gridDims[u], gridDims[v]
	mask := make([]volume.BlockType, su*sv)
	quads := 0

	var normal mgl32.Vec3
	normal[d] = float32(sign)

	for layer := 0; layer < gridDims[d]; layer++ {
		clear(mask)
		for i := 0; i < su; i++ {
			for j := 0; j < sv; j++ {
				var p [3]int
				p[d], p[u], p[v] = layer, i, j
				bt := at(grid, p)
				if bt == volume.BlockTypeAir {
					continue
				}
				p[d] += sign
				if at(grid, p) == volume.BlockTypeAir {
					mask[i*sv+j] = bt
				}
			}
		}

		// Greedy merge over mask
		for i := 0; i < su; i++ {
			for j := 0; j < sv; {
				bt := mask[i*sv+j]
				if bt == volume.BlockTypeAir {
					j++
					continue
				}
				height := 1
				for j+height < sv && mask[i*sv+j+height] == bt {
					height++
				}
				width := 1
			grow:
				for i+width < su {
					for k := 0; k < height; k++ {
						if mask[(i+width)*sv+j+k] != bt {
							break grow
						}
					}
					width++
				}
				for a := 0; a < width; a++ {
					for k := 0; k < height; k++ {
						mask[(i+a)*sv+j+k] = volume.BlockTypeAir
					}
				}

				plane := layer
				if sign > 0 {
					plane++
				}
				emitQuad(w, origin, normal, bt, d, u, v, plane, i, j, i+width, j+height, sign)
				quads++
				j += height
			}
		}
	}
	return quads
}

func emitQuad(w *surface.Writer, origin, normal mgl32.Vec3, bt volume.BlockType, d, u, v, plane, u0, v0, u1, v1, sign int) {
	tex := mgl32.Vec2{(float32(bt) + 0.5) / float32(volume.BlockCount()), 0.5}
	corner := func(cu, cv int) surface.Vertex {
		var p mgl32.Vec3
		p[d] = float32(plane)
		p[u] = float32(cu)
		p[v] = float32(cv)
		return surface.Vertex{Position: origin.Add(p.Mul(world.BlockSize)), Normal: normal, TexCoord: tex}
	}
	// u x v points along +d, so swapping the in-plane axes flips the winding.
	if sign > 0 {
		w.AddQuad(corner(u0, v0), corner(u1, v0), corner(u0, v1), corner(u1, v1))
	} else {
		w.AddQuad(corner(u0, v0), corner(u0, v1), corner(u1, v0), corner(u1, v1))
	}
}
