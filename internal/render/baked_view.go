package render

import (
	"fmt"
	"math"

	"voxstream/internal/alloc"
	"voxstream/internal/profiling"
	"voxstream/internal/surface"
	"voxstream/internal/world"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// growthFactor is applied to a slab each time an allocation does not fit.
const growthFactor = 1.7

// Options sizes the three geometry slabs.
type Options struct {
	VertexBytes   int
	IndexBytes    int
	InstanceBytes int

	VertexMinPage   int
	IndexMinPage    int
	InstanceMinPage int
}

// DefaultOptions returns the slab sizes used by the desktop client.
func DefaultOptions() Options {
	return Options{
		VertexBytes:     64 << 20,
		IndexBytes:      64 << 20,
		InstanceBytes:   1 << 20,
		VertexMinPage:   128 << 10,
		IndexMinPage:    128 << 10,
		InstanceMinPage: 1 << 10,
	}
}

// placeData pairs a virtual allocator with the host buffer it carves up.
type placeData struct {
	alloc    *alloc.VirtualAllocator
	buf      *HostBuffer
	elemSize int
	log      *zap.Logger
}

func newPlaceData(name string, size, elemSize, minPage int, log *zap.Logger) *placeData {
	a := alloc.NewVirtualAllocator(size, elemSize, minPage)
	return &placeData{
		alloc:    a,
		buf:      NewHostBuffer(name, a.Size()),
		elemSize: elemSize,
		log:      log,
	}
}

// place stores data and returns its offset in elements. The slab grows until
// the allocation fits; previously placed data keeps its offset.
func (p *placeData) place(data []byte) int {
	for {
		if off, ok := p.alloc.Allocate(len(data)); ok {
			p.buf.Write(off, data)
			return off / p.elemSize
		}
		old := p.alloc.Size()
		p.alloc.Resize(max(int(math.Ceil(float64(old)*growthFactor)), old+p.alloc.PageSize()))
		p.buf.Resize(p.alloc.Size())
		p.log.Debug("buffer grew",
			zap.String("name", p.buf.Name()),
			zap.Int("old", old),
			zap.Int("new", p.alloc.Size()))
	}
}

func (p *placeData) free(elemOffset int) error {
	return p.alloc.Free(elemOffset * p.elemSize)
}

// BakedWorldView mirrors a WorldView on the render side: one grid cell per
// window position, pointing into three shared geometry slabs. It is owned by
// the control thread.
type BakedWorldView struct {
	log *zap.Logger

	center world.ChunkPos
	radius world.ChunkPos
	grid   *CircularGrid

	vertices  *placeData
	indices   *placeData
	instances *placeData
}

// NewBakedWorldView creates an empty view for the window around center.
func NewBakedWorldView(center, renderDistance world.ChunkPos, opts Options, logger *zap.Logger) *BakedWorldView {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("baked")
	side := renderDistance.Scale(2).Add(world.ChunkPos{X: 1, Y: 1, Z: 1})
	return &BakedWorldView{
		log:       log,
		center:    center,
		radius:    renderDistance,
		grid:      NewCircularGrid(side),
		vertices:  newPlaceData("vertex", opts.VertexBytes, surface.VertexSize, opts.VertexMinPage, log),
		indices:   newPlaceData("index", opts.IndexBytes, surface.IndexSize, opts.IndexMinPage, log),
		instances: newPlaceData("instance", opts.InstanceBytes, surface.InstanceSize, opts.InstanceMinPage, log),
	}
}

// Center returns the window center.
func (b *BakedWorldView) Center() world.ChunkPos { return b.center }

// RenderDistance returns the window radius.
func (b *BakedWorldView) RenderDistance() world.ChunkPos { return b.radius }

// Grid exposes the ring of cells.
func (b *BakedWorldView) Grid() *CircularGrid { return b.grid }

// VertexBuffer, IndexBuffer and InstanceBuffer expose the host slabs for upload.
func (b *BakedWorldView) VertexBuffer() *HostBuffer   { return b.vertices.buf }
func (b *BakedWorldView) IndexBuffer() *HostBuffer    { return b.indices.buf }
func (b *BakedWorldView) InstanceBuffer() *HostBuffer { return b.instances.buf }

func (b *BakedWorldView) relative(pos world.ChunkPos) world.ChunkPos {
	return pos.Sub(b.center).Add(b.radius)
}

// Contains reports whether pos is inside the window.
func (b *BakedWorldView) Contains(pos world.ChunkPos) bool {
	return world.IsChunkPositionInside(b.center, b.radius, pos)
}

// Slot returns the cell for pos.
func (b *BakedWorldView) Slot(pos world.ChunkPos) (Pixel, error) {
	return b.grid.Read(b.relative(pos))
}

// UploadChunk places s into the slabs and records it in the cell for pos. An
// upload for a position outside the window is dropped; an empty surface only
// clears the cell.
func (b *BakedWorldView) UploadChunk(pos world.ChunkPos, s *surface.Surface) {
	defer profiling.Track("render.BakedWorldView.UploadChunk")()

	if !b.Contains(pos) {
		b.log.Debug("upload outside window dropped", zap.Stringer("pos", pos), zap.Stringer("center", b.center))
		return
	}
	// A chunk can be handed over twice when a view is recreated over it.
	b.DestroyChunk(pos)
	if s.Empty() {
		return
	}

	p := Pixel{
		IndexCount:    uint32(len(s.Indices)),
		InstanceCount: uint32(len(s.Instances)),
		VertexOffset:  int32(b.vertices.place(s.VertexBytes())),
		FirstIndex:    uint32(b.indices.place(s.IndexBytes())),
		FirstInstance: uint32(b.instances.place(s.InstanceBytes())),
	}
	// Contains was checked above.
	_ = b.grid.Write(b.relative(pos), p)
}

// DestroyChunk releases the geometry referenced by the cell for pos. Empty
// cells and positions outside the window are ignored.
func (b *BakedWorldView) DestroyChunk(pos world.ChunkPos) {
	rel := b.relative(pos)
	p, err := b.grid.Read(rel)
	if err != nil || !p.Valid() {
		return
	}
	for _, r := range []struct {
		pd  *placeData
		off int
	}{
		{b.vertices, int(p.VertexOffset)},
		{b.indices, int(p.FirstIndex)},
		{b.instances, int(p.FirstInstance)},
	} {
		if err := r.pd.free(r.off); err != nil {
			b.log.Error("free slab region", zap.Stringer("pos", pos), zap.String("buffer", r.pd.buf.Name()), zap.Error(err))
		}
	}
	_ = b.grid.Invalidate(rel)
}

// SetPosition recenters the window, rotating the ring instead of moving cells.
// Cells leaving the window must have been destroyed beforehand.
func (b *BakedWorldView) SetPosition(center world.ChunkPos) {
	b.Shift(center.Sub(b.center))
}

// Shift moves the window center by offset.
func (b *BakedWorldView) Shift(offset world.ChunkPos) {
	b.center = b.center.Add(offset)
	b.grid.Shift(offset)
}

// DrawCommand mirrors the indexed-indirect draw record consumed by the GPU.
type DrawCommand struct {
	Count         uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	BaseInstance  uint32
}

// DrawList returns one indirect command per occupied cell in window order.
func (b *BakedWorldView) DrawList() []DrawCommand {
	cmds := make([]DrawCommand, 0, b.grid.ValidCount())
	b.grid.Each(func(_ world.ChunkPos, p Pixel) {
		cmds = append(cmds, DrawCommand{
			Count:         p.IndexCount,
			InstanceCount: p.InstanceCount,
			FirstIndex:    p.FirstIndex,
			BaseVertex:    p.VertexOffset,
			BaseInstance:  p.FirstInstance,
		})
	})
	return cmds
}

// SlabStats describes one geometry slab.
type SlabStats struct {
	Name           string
	Bytes          int
	PageSize       int
	AllocatedPages int
	PageCount      int
}

func (s SlabStats) String() string {
	return fmt.Sprintf("%s %s (%d/%d pages of %s)", s.Name,
		humanize.IBytes(uint64(s.Bytes)), s.AllocatedPages, s.PageCount, humanize.IBytes(uint64(s.PageSize)))
}

// Stats summarizes buffer usage.
type Stats struct {
	Cells      int
	ValidCells int
	Slabs      []SlabStats
}

func (s Stats) String() string {
	out := fmt.Sprintf("cells %d/%d", s.ValidCells, s.Cells)
	for _, sl := range s.Slabs {
		out += ", " + sl.String()
	}
	return out
}

// Stats reports cell occupancy and slab sizes.
func (b *BakedWorldView) Stats() Stats {
	side := b.grid.Side()
	st := Stats{Cells: side.X * side.Y * side.Z, ValidCells: b.grid.ValidCount()}
	for _, pd := range []*placeData{b.vertices, b.indices, b.instances} {
		st.Slabs = append(st.Slabs, SlabStats{
			Name:           pd.buf.Name(),
			Bytes:          pd.buf.Len(),
			PageSize:       pd.alloc.PageSize(),
			AllocatedPages: pd.alloc.AllocatedPages(),
			PageCount:      pd.alloc.PageCount(),
		})
	}
	return st
}
