package world

import "fmt"

// ChunkPos identifies a chunk on the infinite chunk grid. It is also used for
// block coordinates and per-axis vectors such as render distances.
type ChunkPos struct {
	X, Y, Z int
}

func (p ChunkPos) Add(o ChunkPos) ChunkPos { return ChunkPos{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }
func (p ChunkPos) Sub(o ChunkPos) ChunkPos { return ChunkPos{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }
func (p ChunkPos) Mul(o ChunkPos) ChunkPos { return ChunkPos{p.X * o.X, p.Y * o.Y, p.Z * o.Z} }
func (p ChunkPos) Scale(k int) ChunkPos    { return ChunkPos{p.X * k, p.Y * k, p.Z * k} }

// IsZero reports whether all components are zero.
func (p ChunkPos) IsZero() bool { return p == ChunkPos{} }

// Axis returns component i (0 = X, 1 = Y, 2 = Z).
func (p ChunkPos) Axis(i int) int {
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// SetAxis sets component i (0 = X, 1 = Y, 2 = Z).
func (p *ChunkPos) SetAxis(i, v int) {
	switch i {
	case 0:
		p.X = v
	case 1:
		p.Y = v
	default:
		p.Z = v
	}
}

func (p ChunkPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Pmod is the non-negative remainder of a divided by b.
func Pmod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// PmodPos applies Pmod per axis.
func PmodPos(p, side ChunkPos) ChunkPos {
	return ChunkPos{Pmod(p.X, side.X), Pmod(p.Y, side.Y), Pmod(p.Z, side.Z)}
}
