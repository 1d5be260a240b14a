package world

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"voxstream/internal/surface"
	"voxstream/internal/volume"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Chunk dimensions in blocks
	ChunkSizeX = 16
	ChunkSizeY = 256
	ChunkSizeZ = 16

	// BlockSize is the edge length of a block in world units.
	BlockSize = 1.0
)

// GridSize is the chunk dimension vector.
var GridSize = ChunkPos{ChunkSizeX, ChunkSizeY, ChunkSizeZ}

// ChunkWorldSize is the extent of a chunk in world units.
var ChunkWorldSize = mgl32.Vec3{ChunkSizeX * BlockSize, ChunkSizeY * BlockSize, ChunkSizeZ * BlockSize}

// Chunk is a 16x256x16 column of blocks. Its volume and surface are filled in
// by the generation pipeline and may be absent until then.
type Chunk struct {
	pos ChunkPos

	mu      sync.Mutex
	volume  *volume.Octree
	surface *surface.Surface

	evicted atomic.Bool
}

// NewChunk creates an empty chunk at the given chunk position.
func NewChunk(pos ChunkPos) *Chunk {
	return &Chunk{pos: pos}
}

// Position returns the chunk position.
func (c *Chunk) Position() ChunkPos { return c.pos }

// Evicted reports whether the chunk was unloaded from its World.
func (c *Chunk) Evicted() bool { return c.evicted.Load() }

// HasVolume reports whether a volume has been assigned. Safe to poll while
// generation is running.
func (c *Chunk) HasVolume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume != nil
}

// SetVolume replaces the chunk volume.
func (c *Chunk) SetVolume(o *volume.Octree) {
	c.mu.Lock()
	c.volume = o
	c.mu.Unlock()
}

// WithVolume runs fn with exclusive access to the volume, which is nil when
// none was generated.
func (c *Chunk) WithVolume(fn func(o *volume.Octree)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.volume)
}

// ContainsLocal reports whether (x, y, z) is a valid block coordinate inside a chunk.
func ContainsLocal(x, y, z int) bool {
	return x >= 0 && x < ChunkSizeX && y >= 0 && y < ChunkSizeY && z >= 0 && z < ChunkSizeZ
}

// BlockAt returns the block at local coordinates. Missing volumes and
// coordinates outside the chunk read as air.
func (c *Chunk) BlockAt(x, y, z int) volume.BlockType {
	if !ContainsLocal(x, y, z) {
		return volume.BlockTypeAir
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.volume == nil {
		return volume.BlockTypeAir
	}
	b, _ := c.volume.BlockAt(x, y, z)
	return b
}

// SetBlockAt writes a block at local coordinates, creating the volume on first
// write.
func (c *Chunk) SetBlockAt(x, y, z int, t volume.BlockType) error {
	if !ContainsLocal(x, y, z) {
		return fmt.Errorf("chunk %v: block (%d, %d, %d): %w", c.pos, x, y, z, volume.ErrOutOfRange)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.volume == nil {
		c.volume = NewChunkVolume()
	}
	return c.volume.SetBlockAt(x, y, z, t)
}

// NewChunkVolume returns an empty octree sized for one chunk.
func NewChunkVolume() *volume.Octree {
	return volume.NewOctreeForSize(max(ChunkSizeX, ChunkSizeY, ChunkSizeZ))
}

// Surface returns the generated surface, or nil.
func (c *Chunk) Surface() *surface.Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface
}

// SetSurface assigns the generated surface.
func (c *Chunk) SetSurface(s *surface.Surface) {
	c.mu.Lock()
	c.surface = s
	c.mu.Unlock()
}

// Digest fingerprints the chunk volume; zero when there is none.
func (c *Chunk) Digest() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.volume == nil {
		return 0
	}
	return c.volume.Digest()
}

// ToWorldBlock converts a local block coordinate to a world block coordinate.
func (c *Chunk) ToWorldBlock(local ChunkPos) ChunkPos {
	return c.pos.Mul(GridSize).Add(local)
}

// ToWorldPosition returns the world-space position of a local block corner.
func (c *Chunk) ToWorldPosition(local ChunkPos) mgl32.Vec3 {
	origin := mgl32.Vec3{
		float32(c.pos.X) * ChunkWorldSize.X(),
		float32(c.pos.Y) * ChunkWorldSize.Y(),
		float32(c.pos.Z) * ChunkWorldSize.Z(),
	}
	return origin.Add(mgl32.Vec3{float32(local.X), float32(local.Y), float32(local.Z)}.Mul(BlockSize))
}

// ChunkPosOfBlock returns the chunk containing a world block coordinate.
func ChunkPosOfBlock(b ChunkPos) ChunkPos {
	return ChunkPos{floorDiv(b.X, ChunkSizeX), floorDiv(b.Y, ChunkSizeY), floorDiv(b.Z, ChunkSizeZ)}
}

// LocalOf returns the local coordinate of a world block coordinate.
func LocalOf(b ChunkPos) ChunkPos {
	return PmodPos(b, GridSize)
}

// ChunkPosAt returns the chunk containing a world-space position.
func ChunkPosAt(p mgl32.Vec3) ChunkPos {
	return ChunkPos{
		int(math.Floor(float64(p.X() / ChunkWorldSize.X()))),
		int(math.Floor(float64(p.Y() / ChunkWorldSize.Y()))),
		int(math.Floor(float64(p.Z() / ChunkWorldSize.Z()))),
	}
}
