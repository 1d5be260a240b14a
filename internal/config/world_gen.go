package config

import "sync"

// WorldGenSettings holds world generation configuration
type WorldGenSettings struct {
	mu        sync.RWMutex
	generator string
	seed      int64
}

var globalWorldGenSettings = &WorldGenSettings{
	generator: "heightmap",
}

// GetGenerator returns the terrain generator name and seed
func GetGenerator() (name string, seed int64) {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.generator, globalWorldGenSettings.seed
}

// SetGenerator sets the terrain generator and its seed
func SetGenerator(name string, seed int64) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.generator = name
	globalWorldGenSettings.seed = seed
}
