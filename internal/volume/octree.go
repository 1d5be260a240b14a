package volume

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

const (
	parentFlag = 0x80000000
	growSize   = 1024
)

// Octree is a sparse voxel index addressed by morton code.
//
// Nodes live in a flat slice in groups of eight siblings. A slot either holds
// a leaf value or, with parentFlag set, the index of its first child. The root
// is implicit: its children occupy slots [0, 8).
type Octree struct {
	depth int
	nodes []uint32
	next  uint32
}

// DepthFor returns the depth needed to address size voxels per axis.
func DepthFor(size int) int {
	if size <= 2 {
		return 1
	}
	return bits.Len(uint(size - 1))
}

// NewOctree creates an empty octree with the given depth.
func NewOctree(depth int) *Octree {
	if depth < 1 {
		depth = 1
	}
	if depth > 10 {
		panic(fmt.Sprintf("volume: octree depth %d exceeds 32-bit morton range", depth))
	}
	return &Octree{
		depth: depth,
		nodes: make([]uint32, 8),
		next:  8,
	}
}

// NewOctreeForSize creates an octree able to hold size voxels per axis.
func NewOctreeForSize(size int) *Octree {
	return NewOctree(DepthFor(size))
}

func (o *Octree) Depth() int { return o.depth }

// Side is the number of voxels per axis the tree can address.
func (o *Octree) Side() int { return 1 << o.depth }

// NodeCount reports the number of node slots handed out so far.
func (o *Octree) NodeCount() int { return int(o.next) }

func (o *Octree) childIndex(code uint32, level int) uint32 {
	return (code >> (uint(o.depth-level-1) * 3)) & 0x7
}

// Get returns the value stored for code. Leaves above maximum depth answer for
// their whole region; codes outside the tree and paths past allocated storage
// read as air.
func (o *Octree) Get(code uint32) BlockType {
	if code>>(uint(o.depth)*3) != 0 {
		return BlockTypeAir
	}
	node := uint32(0)
	for level := 0; level < o.depth; level++ {
		idx := node + o.childIndex(code, level)
		if int(idx) >= len(o.nodes) {
			return BlockTypeAir
		}
		v := o.nodes[idx]
		if v&parentFlag == 0 {
			return BlockType(v)
		}
		node = v &^ parentFlag
	}
	return BlockTypeAir
}

// Set stores value for code, splitting leaves on the way down as needed.
// Writing a value that the covering leaf already holds changes nothing.
func (o *Octree) Set(code uint32, value BlockType) error {
	if code>>(uint(o.depth)*3) != 0 {
		return fmt.Errorf("set code %#x at depth %d: %w", code, o.depth, ErrOutOfRange)
	}

	node := uint32(0)
	for level := 0; level < o.depth; level++ {
		idx := node + o.childIndex(code, level)
		v := o.nodes[idx]
		if v&parentFlag != 0 {
			node = v &^ parentFlag
			continue
		}
		if BlockType(v) == value {
			return nil
		}
		if level == o.depth-1 {
			o.nodes[idx] = uint32(value)
			return nil
		}

		child := o.alloc()
		for i := child; i < child+8; i++ {
			o.nodes[i] = v
		}
		o.nodes[idx] = child | parentFlag
		node = child
	}
	return nil
}

// alloc reserves eight sibling slots and returns the first one.
func (o *Octree) alloc() uint32 {
	first := o.next
	o.next += 8
	if int(o.next) > len(o.nodes) {
		grown := make([]uint32, len(o.nodes)+growSize)
		copy(grown, o.nodes)
		o.nodes = grown
	}
	return first
}

// Traverse visits every non-empty leaf depth-first. level is the depth of the
// leaf below the root (0 for the root's children) and code is the morton code
// of the leaf's lowest corner.
func (o *Octree) Traverse(fn func(value BlockType, level int, code uint32)) {
	o.traverse(0, 0, 0, fn)
}

func (o *Octree) traverse(node uint32, level int, code uint32, fn func(BlockType, int, uint32)) {
	shift := uint(o.depth-level-1) * 3
	for i := uint32(0); i < 8; i++ {
		v := o.nodes[node+i]
		childCode := code | i<<shift
		if v&parentFlag != 0 {
			o.traverse(v&^parentFlag, level+1, childCode, fn)
		} else if v != 0 {
			fn(BlockType(v), level, childCode)
		}
	}
}

// LeafSide returns how many voxels per axis a leaf at level covers.
func (o *Octree) LeafSide(level int) int {
	return 1 << (o.depth - level - 1)
}

// BlockAt returns the value at a voxel coordinate.
func (o *Octree) BlockAt(x, y, z int) (BlockType, error) {
	code, err := o.encode(x, y, z)
	if err != nil {
		return BlockTypeAir, err
	}
	return o.Get(code), nil
}

// SetBlockAt stores value at a voxel coordinate.
func (o *Octree) SetBlockAt(x, y, z int, value BlockType) error {
	code, err := o.encode(x, y, z)
	if err != nil {
		return err
	}
	return o.Set(code, value)
}

func (o *Octree) encode(x, y, z int) (uint32, error) {
	side := o.Side()
	if x < 0 || y < 0 || z < 0 || x >= side || y >= side || z >= side {
		return 0, fmt.Errorf("voxel (%d, %d, %d) outside %d^3: %w", x, y, z, side, ErrOutOfRange)
	}
	return Encode(x, y, z)
}

// Digest fingerprints the tree contents. Trees holding the same voxels with
// the same subdivision produce the same digest.
func (o *Octree) Digest() uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 9)
	o.Traverse(func(v BlockType, level int, code uint32) {
		buf = buf[:0]
		buf = append(buf, byte(v), byte(level))
		buf = binary.LittleEndian.AppendUint32(buf, code)
		h.Write(buf)
	})
	return h.Sum64()
}
