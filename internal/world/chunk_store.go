package world

import (
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// chunkStore maps chunk positions to chunks. Check-and-insert is atomic.
type chunkStore struct {
	chunks   map[ChunkPos]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

func newChunkStore() *chunkStore {
	return &chunkStore{
		chunks: make(map[ChunkPos]*Chunk),
	}
}

// getOrCreate returns the chunk at pos, inserting a new empty one if absent.
// created is true only for the caller whose insert won.
func (cs *chunkStore) getOrCreate(pos ChunkPos) (chunk *Chunk, created bool) {
	cs.mu.RLock()
	chunk, exists := cs.chunks[pos]
	cs.mu.RUnlock()
	if exists {
		return chunk, false
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Double-check locking: another goroutine might have created it while we were waiting for the lock
	if existing, ok := cs.chunks[pos]; ok {
		return existing, false
	}
	chunk = NewChunk(pos)
	cs.chunks[pos] = chunk
	cs.modCount++
	return chunk, true
}

func (cs *chunkStore) get(pos ChunkPos) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[pos]
}

// remove deletes the chunk at pos and marks it evicted.
func (cs *chunkStore) remove(pos ChunkPos) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	chunk, ok := cs.chunks[pos]
	if ok {
		chunk.evicted.Store(true)
		delete(cs.chunks, pos)
		cs.modCount++
	}
	return ok
}

func (cs *chunkStore) len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

func (cs *chunkStore) getModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// positions returns the stored positions sorted by Y, then X, then Z.
func (cs *chunkStore) positions() []ChunkPos {
	cs.mu.RLock()
	keys := maps.Keys(cs.chunks)
	cs.mu.RUnlock()

	slices.SortFunc(keys, func(a, b ChunkPos) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Z - b.Z
	})
	return keys
}
