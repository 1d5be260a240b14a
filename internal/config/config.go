package config

import "sync"

// Horizontal render distance bounds in chunks.
const (
	MinRenderDistance = 1
	MaxRenderDistance = 32
)

// RenderSettings holds render configuration
type RenderSettings struct {
	mu             sync.RWMutex
	renderDistance RenderDistance // in chunks
	fpsLimit       int
}

var globalRenderSettings = &RenderSettings{
	renderDistance: RenderDistance{X: 8, Y: 1, Z: 8},
	fpsLimit:       60,
}

// GetRenderDistance returns the current per-axis render distance in chunks
func GetRenderDistance() RenderDistance {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.renderDistance
}

// SetRenderDistance sets the render distance in chunks. X and Z are clamped to
// [MinRenderDistance, MaxRenderDistance]; Y only has to be non-negative.
func SetRenderDistance(rd RenderDistance) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	rd.X = min(max(rd.X, MinRenderDistance), MaxRenderDistance)
	rd.Z = min(max(rd.Z, MinRenderDistance), MaxRenderDistance)
	rd.Y = max(rd.Y, 0)

	globalRenderSettings.renderDistance = rd
}

// GetFPSLimit returns the frame cap; zero or less means uncapped
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap. Negative values disable it.
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.fpsLimit = max(limit, 0)
}

// Apply seeds the runtime settings from a loaded file.
func Apply(s Settings) {
	SetRenderDistance(s.RenderDistance)
	SetFPSLimit(s.FPSLimit)
	SetGenerator(s.Generator, s.Seed)
}
