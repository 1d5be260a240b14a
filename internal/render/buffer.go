package render

// HostBuffer is the host-side copy of a device buffer. Writes are tracked as a
// single dirty range that Flush hands to the uploader once per frame.
type HostBuffer struct {
	name    string
	data    []byte
	dirtyLo int
	dirtyHi int
}

// NewHostBuffer allocates a zeroed buffer of size bytes.
func NewHostBuffer(name string, size int) *HostBuffer {
	return &HostBuffer{name: name, data: make([]byte, size)}
}

// Name returns the label used in logs and stats.
func (b *HostBuffer) Name() string { return b.name }

// Len returns the buffer size in bytes.
func (b *HostBuffer) Len() int { return len(b.data) }

// Bytes exposes the buffer contents.
func (b *HostBuffer) Bytes() []byte { return b.data }

// Resize grows the buffer to size bytes, keeping the existing contents at the
// same offsets. Shrinking is ignored.
func (b *HostBuffer) Resize(size int) {
	if size <= len(b.data) {
		return
	}
	grown := make([]byte, size)
	copy(grown, b.data)
	b.data = grown
	// The device copy must be recreated in full.
	b.markDirty(0, size)
}

// Write copies p into the buffer at offset. The range must already fit.
func (b *HostBuffer) Write(offset int, p []byte) {
	if len(p) == 0 {
		return
	}
	copy(b.data[offset:offset+len(p)], p)
	b.markDirty(offset, offset+len(p))
}

func (b *HostBuffer) markDirty(lo, hi int) {
	if b.dirtyHi == b.dirtyLo {
		b.dirtyLo, b.dirtyHi = lo, hi
		return
	}
	b.dirtyLo = min(b.dirtyLo, lo)
	b.dirtyHi = max(b.dirtyHi, hi)
}

// Dirty reports whether writes are pending.
func (b *HostBuffer) Dirty() bool { return b.dirtyHi > b.dirtyLo }

// Flush passes the merged dirty range to upload and clears it.
func (b *HostBuffer) Flush(upload func(offset int, data []byte)) {
	if !b.Dirty() {
		return
	}
	upload(b.dirtyLo, b.data[b.dirtyLo:b.dirtyHi])
	b.dirtyLo, b.dirtyHi = 0, 0
}
