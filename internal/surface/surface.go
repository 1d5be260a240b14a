package surface

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the per-vertex record uploaded to the vertex buffer.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Index addresses a vertex relative to the draw's vertex offset.
type Index = uint32

// Instance places a surface in world space.
type Instance struct {
	Transform mgl32.Mat4
}

// Element sizes in bytes, as laid out in device buffers.
const (
	VertexSize   = int(unsafe.Sizeof(Vertex{}))
	IndexSize    = int(unsafe.Sizeof(Index(0)))
	InstanceSize = int(unsafe.Sizeof(Instance{}))
)

// Surface is the renderable geometry generated for one chunk.
type Surface struct {
	Vertices  []Vertex
	Indices   []Index
	Instances []Instance
}

// Empty reports whether the surface lacks any of the arrays a draw needs.
func (s *Surface) Empty() bool {
	return s == nil || len(s.Vertices) == 0 || len(s.Indices) == 0 || len(s.Instances) == 0
}

// VertexBytes returns the vertex array as raw bytes without copying.
func (s *Surface) VertexBytes() []byte { return asBytes(s.Vertices, VertexSize) }

// IndexBytes returns the index array as raw bytes without copying.
func (s *Surface) IndexBytes() []byte { return asBytes(s.Indices, IndexSize) }

// InstanceBytes returns the instance array as raw bytes without copying.
func (s *Surface) InstanceBytes() []byte { return asBytes(s.Instances, InstanceSize) }

func asBytes[T any](items []T, size int) []byte {
	if len(items) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&items[0])), len(items)*size)
}
