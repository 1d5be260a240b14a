package world

import "voxstream/internal/surface"

// VolumeGenerator fills a chunk's volume from its position alone.
type VolumeGenerator interface {
	GenerateVolume(c *Chunk)
}

// SurfaceGenerator builds renderable geometry from a chunk's volume.
type SurfaceGenerator interface {
	Generate(c *Chunk, w *surface.Writer)
}

// AsyncRunner runs jobs on a worker pool.
type AsyncRunner interface {
	RunAsync(job func())
}

// MainThreadRunner queues jobs for the control thread.
type MainThreadRunner interface {
	RunOnMainThread(job func())
}

// RenderSink receives world view events on the control thread.
type RenderSink interface {
	WorldViewRecreate(center, renderDistance ChunkPos)
	WorldViewSetPosition(center ChunkPos)
	WorldViewUploadChunk(c *Chunk)
	WorldViewDestroyChunk(pos ChunkPos)
}
