package world

// DeltaChunkIterator visits the chunk positions inside the window around `to`
// that are outside the window around `from`. Windows are the boxes
// [center - radius, center + radius]. Swap the centers to get the positions
// that left the window instead.
type DeltaChunkIterator struct {
	from, to, radius ChunkPos
	visit            func(ChunkPos)
}

// NewDeltaChunkIterator prepares an iteration from one window center to another.
func NewDeltaChunkIterator(from, to, radius ChunkPos, visit func(ChunkPos)) *DeltaChunkIterator {
	return &DeltaChunkIterator{from: from, to: to, radius: radius, visit: visit}
}

// Iterate calls visit once per position and returns how many were visited.
//
// Each axis on which the centers differ contributes a slab: the part of the
// new window's range on that axis not covered by the old one, crossed with the
// new window's full range on the other two axes. Slabs of different axes can
// share edges and corners, so positions are deduplicated when more than one
// axis moved.
func (it *DeltaChunkIterator) Iterate() int {
	moved := 0
	for a := 0; a < 3; a++ {
		if it.from.Axis(a) != it.to.Axis(a) {
			moved++
		}
	}
	if moved == 0 {
		return 0
	}

	var seen map[ChunkPos]struct{}
	if moved > 1 {
		seen = make(map[ChunkPos]struct{})
	}

	count := 0
	for a := 0; a < 3; a++ {
		lo, hi, ok := it.slab(a)
		if !ok {
			continue
		}
		start := it.to.Sub(it.radius)
		end := it.to.Add(it.radius)
		start.SetAxis(a, lo)
		end.SetAxis(a, hi)

		for x := start.X; x <= end.X; x++ {
			for y := start.Y; y <= end.Y; y++ {
				for z := start.Z; z <= end.Z; z++ {
					p := ChunkPos{x, y, z}
					if seen != nil {
						if _, dup := seen[p]; dup {
							continue
						}
						seen[p] = struct{}{}
					}
					it.visit(p)
					count++
				}
			}
		}
	}
	return count
}

// slab returns the inclusive range along axis a covered by the new window and
// not by the old one.
func (it *DeltaChunkIterator) slab(a int) (lo, hi int, ok bool) {
	from, to, r := it.from.Axis(a), it.to.Axis(a), it.radius.Axis(a)
	switch {
	case to > from:
		lo, hi = max(from+r+1, to-r), to+r
	case to < from:
		lo, hi = to-r, min(from-r-1, to+r)
	default:
		return 0, 0, false
	}
	return lo, hi, lo <= hi
}
