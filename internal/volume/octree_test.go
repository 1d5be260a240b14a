package volume

import (
	"errors"
	"math/rand"
	"testing"
)

func TestMortonKnownCodes(t *testing.T) {
	tests := []struct {
		x, y, z int
		want    uint32
	}{
		{0, 0, 0, 0},
		{1, 0, 0, 0x1},
		{0, 1, 0, 0x2},
		{0, 0, 1, 0x4},
		{23, 10, 2, 0x1479},
		{81, 99, 7, 0xd1137},
		{67, 2, 11, 0x4083d},
		{MaxCoord, MaxCoord, MaxCoord, 0x3fffffff},
	}
	for _, tt := range tests {
		got, err := Encode(tt.x, tt.y, tt.z)
		if err != nil {
			t.Fatalf("Encode(%d, %d, %d): %v", tt.x, tt.y, tt.z, err)
		}
		if got != tt.want {
			t.Errorf("Encode(%d, %d, %d): got %#x, want %#x", tt.x, tt.y, tt.z, got, tt.want)
		}
		x, y, z := Decode(tt.want)
		if x != tt.x || y != tt.y || z != tt.z {
			t.Errorf("Decode(%#x): got (%d, %d, %d), want (%d, %d, %d)", tt.want, x, y, z, tt.x, tt.y, tt.z)
		}
	}
}

func TestMortonRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		x, y, z := rng.Intn(MaxCoord+1), rng.Intn(MaxCoord+1), rng.Intn(MaxCoord+1)
		code, err := Encode(x, y, z)
		if err != nil {
			t.Fatal(err)
		}
		if dx, dy, dz := Decode(code); dx != x || dy != y || dz != z {
			t.Fatalf("round trip (%d, %d, %d): got (%d, %d, %d)", x, y, z, dx, dy, dz)
		}
	}
}

func TestMortonRejectsOutOfRange(t *testing.T) {
	for _, p := range [][3]int{{-1, 0, 0}, {0, -5, 0}, {0, 0, MaxCoord + 1}} {
		if _, err := Encode(p[0], p[1], p[2]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Encode(%v): got %v, want ErrOutOfRange", p, err)
		}
	}
}

func TestDepthFor(t *testing.T) {
	tests := map[int]int{1: 1, 2: 1, 3: 2, 16: 4, 17: 5, 256: 8}
	for size, want := range tests {
		if got := DepthFor(size); got != want {
			t.Errorf("DepthFor(%d): got %d, want %d", size, got, want)
		}
	}
}

func TestOctreeSetGet(t *testing.T) {
	o := NewOctree(4)
	if err := o.SetBlockAt(13, 8, 2, 23); err != nil {
		t.Fatal(err)
	}
	if got, _ := o.BlockAt(13, 8, 2); got != 23 {
		t.Fatalf("BlockAt(13, 8, 2): got %d, want 23", got)
	}
	// Siblings produced by the split stay empty.
	for _, p := range [][3]int{{12, 8, 2}, {13, 9, 2}, {0, 0, 0}, {15, 15, 15}} {
		if got, _ := o.BlockAt(p[0], p[1], p[2]); got != BlockTypeAir {
			t.Errorf("BlockAt(%v): got %d, want 0", p, got)
		}
	}

	var leaves int
	o.Traverse(func(v BlockType, level int, code uint32) {
		leaves++
		if v != 23 {
			t.Errorf("unexpected leaf value %d", v)
		}
		if level != o.Depth()-1 {
			t.Errorf("leaf level: got %d, want %d", level, o.Depth()-1)
		}
		if x, y, z := Decode(code); x != 13 || y != 8 || z != 2 {
			t.Errorf("leaf position: got (%d, %d, %d), want (13, 8, 2)", x, y, z)
		}
	})
	if leaves != 1 {
		t.Fatalf("leaf count: got %d, want 1", leaves)
	}
}

func TestOctreeOverwrite(t *testing.T) {
	o := NewOctree(5)
	code, _ := Encode(3, 30, 7)
	_ = o.Set(code, 1)
	_ = o.Set(code, 4)
	if got := o.Get(code); got != 4 {
		t.Fatalf("Get after overwrite: got %d, want 4", got)
	}
}

func TestOctreeIdempotentSet(t *testing.T) {
	o := NewOctree(4)
	code, _ := Encode(5, 6, 7)
	_ = o.Set(code, 2)
	n := o.NodeCount()
	_ = o.Set(code, 2)
	if got := o.NodeCount(); got != n {
		t.Fatalf("node count after repeated set: got %d, want %d", got, n)
	}
	// Writing air into an untouched region is a no-op too.
	other, _ := Encode(15, 0, 0)
	_ = o.Set(other, BlockTypeAir)
	if got := o.NodeCount(); got != n {
		t.Fatalf("node count after air write: got %d, want %d", got, n)
	}
}

func TestOctreeSplitKeepsSiblings(t *testing.T) {
	o := NewOctree(2) // 4^3
	// Fill the octant x,y,z in [0,2) with stone, then punch one voxel.
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				_ = o.SetBlockAt(x, y, z, BlockTypeStone)
			}
		}
	}
	_ = o.SetBlockAt(1, 1, 1, BlockTypeAir)
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				want := BlockTypeStone
				if x == 1 && y == 1 && z == 1 {
					want = BlockTypeAir
				}
				if got, _ := o.BlockAt(x, y, z); got != want {
					t.Errorf("BlockAt(%d, %d, %d): got %d, want %d", x, y, z, got, want)
				}
			}
		}
	}
}

func TestOctreeRejectsOutOfRange(t *testing.T) {
	o := NewOctree(4)
	for _, p := range [][3]int{{16, 0, 0}, {0, -1, 0}, {0, 0, 100}} {
		if err := o.SetBlockAt(p[0], p[1], p[2], 1); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetBlockAt(%v): got %v, want ErrOutOfRange", p, err)
		}
	}
	if err := o.Set(1<<12, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Set(1<<12): got %v, want ErrOutOfRange", err)
	}
}

func TestOctreeGetOutOfRangeIsAir(t *testing.T) {
	o := NewOctree(4)
	for _, code := range []uint32{0, 0x5, 0xfff} {
		if err := o.Set(code, BlockTypeStone); err != nil {
			t.Fatal(err)
		}
	}
	for _, code := range []uint32{1 << 12, 0x5 | 1<<12, 0xfff | 1<<20, 0xffffffff} {
		if got := o.Get(code); got != BlockTypeAir {
			t.Errorf("Get(%#x): got %v, want air", code, got)
		}
	}
	if got := o.Get(0x5); got != BlockTypeStone {
		t.Errorf("Get(0x5): got %v, want stone", got)
	}
}

// Every voxel set through the coordinate API is reported by Traverse exactly
// once, at the position it was written.
func TestOctreeTraverseCompleteness(t *testing.T) {
	o := NewOctree(4)
	rng := rand.New(rand.NewSource(3))
	want := make(map[[3]int]BlockType)
	for i := 0; i < 500; i++ {
		p := [3]int{rng.Intn(16), rng.Intn(16), rng.Intn(16)}
		v := BlockType(rng.Intn(BlockCount()))
		if err := o.SetBlockAt(p[0], p[1], p[2], v); err != nil {
			t.Fatal(err)
		}
		if v == BlockTypeAir {
			delete(want, p)
		} else {
			want[p] = v
		}
	}

	seen := make(map[[3]int]bool)
	o.Traverse(func(v BlockType, level int, code uint32) {
		side := o.LeafSide(level)
		x0, y0, z0 := Decode(code)
		for x := x0; x < x0+side; x++ {
			for y := y0; y < y0+side; y++ {
				for z := z0; z < z0+side; z++ {
					p := [3]int{x, y, z}
					if seen[p] {
						t.Fatalf("voxel %v visited twice", p)
					}
					seen[p] = true
					if want[p] != v {
						t.Fatalf("voxel %v: got %d, want %d", p, v, want[p])
					}
				}
			}
		}
	})
	if len(seen) != len(want) {
		t.Fatalf("visited %d voxels, want %d", len(seen), len(want))
	}
}

func TestOctreeGrowsPastInitialStorage(t *testing.T) {
	o := NewOctree(8)
	for i := 0; i < 200; i++ {
		if err := o.SetBlockAt(i%16, i, (i*7)%16, BlockTypeDirt); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 200; i++ {
		if got, _ := o.BlockAt(i%16, i, (i*7)%16); got != BlockTypeDirt {
			t.Fatalf("voxel %d: got %d, want dirt", i, got)
		}
	}
}

func TestOctreeDigest(t *testing.T) {
	a, b := NewOctree(4), NewOctree(4)
	if a.Digest() != b.Digest() {
		t.Fatal("empty trees must share a digest")
	}
	_ = a.SetBlockAt(1, 2, 3, BlockTypeGrass)
	if a.Digest() == b.Digest() {
		t.Fatal("digest did not change after a write")
	}
	_ = b.SetBlockAt(1, 2, 3, BlockTypeGrass)
	if a.Digest() != b.Digest() {
		t.Fatal("identical writes produced different digests")
	}
}

func BenchmarkOctreeSet(b *testing.B) {
	o := NewOctree(8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = o.SetBlockAt(i%16, (i/16)%256, (i/4096)%16, BlockType(1+i%3))
	}
}

func BenchmarkOctreeGet(b *testing.B) {
	o := NewOctree(8)
	for i := 0; i < 16*256; i++ {
		_ = o.SetBlockAt(i%16, i/16, i%7, BlockTypeStone)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = o.BlockAt(i%16, (i/16)%256, (i/4096)%16)
	}
}
