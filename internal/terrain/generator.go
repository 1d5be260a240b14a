package terrain

import (
	"fmt"
	"math"

	"voxstream/internal/volume"
	"voxstream/internal/world"
)

// Generator is a volume generator that can also report terrain height.
type Generator interface {
	world.VolumeGenerator
	HeightAt(worldX, worldZ int) int
}

// New returns the generator registered under name.
func New(name string, seed int64) (Generator, error) {
	switch name {
	case "flat":
		return NewFlatGenerator(0), nil
	case "heightmap", "":
		return NewHeightmapGenerator(seed), nil
	default:
		return nil, fmt.Errorf("terrain: unknown generator %q", name)
	}
}

// FlatGenerator fills a single layer of grass at world height Level.
type FlatGenerator struct {
	Level int
}

// NewFlatGenerator creates a flat generator at the given block height.
func NewFlatGenerator(level int) *FlatGenerator {
	return &FlatGenerator{Level: level}
}

func (g *FlatGenerator) HeightAt(worldX, worldZ int) int { return g.Level }

// GenerateVolume leaves chunks that do not contain Level without a volume.
func (g *FlatGenerator) GenerateVolume(c *world.Chunk) {
	if world.ChunkPosOfBlock(world.ChunkPos{Y: g.Level}).Y != c.Position().Y {
		return
	}
	ly := world.LocalOf(world.ChunkPos{Y: g.Level}).Y

	o := world.NewChunkVolume()
	for x := 0; x < world.ChunkSizeX; x++ {
		for z := 0; z < world.ChunkSizeZ; z++ {
			_ = o.SetBlockAt(x, ly, z, volume.BlockTypeGrass)
		}
	}
	c.SetVolume(o)
}

// HeightmapGenerator shapes terrain from octave value noise. Each column gets
// a grass (or snow) cap, a few blocks of dirt and stone down to the lowest
// neighbouring column, which is all the surface mesher can see.
type HeightmapGenerator struct {
	seed        int64
	frequency   float64
	maxHeight   int
	snowLine    int
	octaves     int
	persistence float64
	lacunarity  float64
}

// NewHeightmapGenerator creates a generator with default shaping parameters.
func NewHeightmapGenerator(seed int64) *HeightmapGenerator {
	return &HeightmapGenerator{
		seed:        seed,
		frequency:   0.023,
		maxHeight:   100,
		snowLine:    80,
		octaves:     3,
		persistence: 0.5,
		lacunarity:  2.0,
	}
}

// HeightAt computes the surface block height at world X,Z.
func (g *HeightmapGenerator) HeightAt(worldX, worldZ int) int {
	n := octaveNoise2D(float64(worldX)*g.frequency, float64(worldZ)*g.frequency, g.seed, g.octaves, g.persistence, g.lacunarity)
	return int(math.Floor(n * float64(g.maxHeight)))
}

// dirtDepth varies between 1 and 3 blocks per column.
func (g *HeightmapGenerator) dirtDepth(worldX, worldZ int) int {
	return 1 + int(hash2(int64(worldX), int64(worldZ), g.seed^0x5bd1e995)%3)
}

func (g *HeightmapGenerator) minNeighborHeight(worldX, worldZ, h int) int {
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx != 0 || dz != 0 {
				h = min(h, g.HeightAt(worldX+dx, worldZ+dz))
			}
		}
	}
	return h
}

// GenerateVolume writes the columns of c. Chunks entirely above or below the
// visible shell get no volume.
func (g *HeightmapGenerator) GenerateVolume(c *world.Chunk) {
	var o *volume.Octree
	set := func(local world.ChunkPos, t volume.BlockType) {
		if o == nil {
			o = world.NewChunkVolume()
		}
		_ = o.SetBlockAt(local.X, local.Y, local.Z, t)
	}

	baseY := c.Position().Y * world.ChunkSizeY
	for x := 0; x < world.ChunkSizeX; x++ {
		for z := 0; z < world.ChunkSizeZ; z++ {
			wb := c.ToWorldBlock(world.ChunkPos{X: x, Z: z})
			top := g.HeightAt(wb.X, wb.Z)
			bottom := g.minNeighborHeight(wb.X, wb.Z, top)
			dirt := g.dirtDepth(wb.X, wb.Z)

			lo := max(bottom, baseY)
			hi := min(top, baseY+world.ChunkSizeY-1)
			for y := hi; y >= lo; y-- {
				t := volume.BlockTypeStone
				switch {
				case y == top && top >= g.snowLine:
					t = volume.BlockTypeSnow
				case y == top:
					t = volume.BlockTypeGrass
				case top-y <= dirt:
					t = volume.BlockTypeDirt
				}
				set(world.ChunkPos{X: x, Y: y - baseY, Z: z}, t)
			}
		}
	}
	if o != nil {
		c.SetVolume(o)
	}
}
