package render

import (
	"voxstream/internal/world"

	"go.uber.org/zap"
)

var _ world.RenderSink = (*Renderer)(nil)

// UploadFunc copies a dirty byte range of the named buffer to the device.
type UploadFunc func(buffer string, offset int, data []byte)

// Renderer receives world view events and keeps the baked view in sync. Device
// submission is left to the UploadFunc passed to Flush.
type Renderer struct {
	log  *zap.Logger
	opts Options
	view *BakedWorldView

	uploads  int
	destroys int

	// paletteDirty is set by every recreate; the new device buffers need the
	// block colors again.
	paletteDirty bool
}

// NewRenderer creates a renderer with no view; one is built on the first
// WorldViewRecreate.
func NewRenderer(opts Options, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{log: logger.Named("render"), opts: opts}
}

// View returns the current baked view, or nil before the first recreate.
func (r *Renderer) View() *BakedWorldView { return r.view }

// Uploads returns the number of chunks uploaded so far.
func (r *Renderer) Uploads() int { return r.uploads }

// Destroys returns the number of destroy events received.
func (r *Renderer) Destroys() int { return r.destroys }

func (r *Renderer) WorldViewRecreate(center, renderDistance world.ChunkPos) {
	r.log.Info("world view recreated",
		zap.Stringer("center", center),
		zap.Stringer("render_distance", renderDistance))
	r.view = NewBakedWorldView(center, renderDistance, r.opts, r.log)
	r.paletteDirty = true
}

func (r *Renderer) WorldViewSetPosition(center world.ChunkPos) {
	if r.view == nil {
		return
	}
	r.view.SetPosition(center)
}

func (r *Renderer) WorldViewUploadChunk(c *world.Chunk) {
	if r.view == nil {
		return
	}
	r.uploads++
	r.view.UploadChunk(c.Position(), c.Surface())
}

func (r *Renderer) WorldViewDestroyChunk(pos world.ChunkPos) {
	if r.view == nil {
		return
	}
	r.destroys++
	r.view.DestroyChunk(pos)
}

// Flush hands every pending slab write to upload and returns the packed grid
// image for the frame. The block palette goes out once after each recreate.
func (r *Renderer) Flush(upload UploadFunc) []uint32 {
	if r.view == nil {
		return nil
	}
	if r.paletteDirty {
		upload(PaletteBuffer, 0, paletteBytes(Palette()))
		r.paletteDirty = false
	}
	for _, b := range []*HostBuffer{r.view.VertexBuffer(), r.view.IndexBuffer(), r.view.InstanceBuffer()} {
		b.Flush(func(offset int, data []byte) {
			upload(b.Name(), offset, data)
		})
	}
	return r.view.Grid().Packed()
}
