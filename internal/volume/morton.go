package volume

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for coordinates that cannot be addressed.
var ErrOutOfRange = errors.New("volume: coordinate out of range")

// MaxCoord is the largest per-axis coordinate a 32-bit morton code can hold.
const MaxCoord = 1<<10 - 1

// spread inserts two zero bits between each of the low 10 bits of v.
func spread(v uint32) uint32 {
	v &= 0x3ff
	v = (v | v<<16) & 0x030000ff
	v = (v | v<<8) & 0x0300f00f
	v = (v | v<<4) & 0x030c30c3
	v = (v | v<<2) & 0x09249249
	return v
}

// compact is the inverse of spread.
func compact(v uint32) uint32 {
	v &= 0x09249249
	v = (v | v>>2) & 0x030c30c3
	v = (v | v>>4) & 0x0300f00f
	v = (v | v>>8) & 0x030000ff
	v = (v | v>>16) & 0x3ff
	return v
}

// Encode interleaves x, y and z into a morton code: x lands in bit 0 of each
// triplet, y in bit 1 and z in bit 2.
func Encode(x, y, z int) (uint32, error) {
	if x < 0 || y < 0 || z < 0 || x > MaxCoord || y > MaxCoord || z > MaxCoord {
		return 0, fmt.Errorf("encode (%d, %d, %d): %w", x, y, z, ErrOutOfRange)
	}
	return spread(uint32(x)) | spread(uint32(y))<<1 | spread(uint32(z))<<2, nil
}

// Decode returns the coordinate that Encode maps to code.
func Decode(code uint32) (x, y, z int) {
	return int(compact(code)), int(compact(code >> 1)), int(compact(code >> 2))
}
