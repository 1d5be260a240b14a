package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// RenderDistance is a per-axis window radius in chunks.
type RenderDistance struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// Buffers sizes the render slabs in bytes.
type Buffers struct {
	VertexInitBytes   int `yaml:"vertex_init_bytes"`
	IndexInitBytes    int `yaml:"index_init_bytes"`
	InstanceInitBytes int `yaml:"instance_init_bytes"`
	VertexMinPage     int `yaml:"vertex_min_page"`
	IndexMinPage      int `yaml:"index_min_page"`
	InstanceMinPage   int `yaml:"instance_min_page"`
}

// Settings is the contents of the settings file.
type Settings struct {
	RenderDistance   RenderDistance `yaml:"render_distance"`
	Workers          int            `yaml:"workers"`
	Seed             int64          `yaml:"seed"`
	Generator        string         `yaml:"generator"`
	FPSLimit         int            `yaml:"fps_limit"`
	UploadsPerSecond float64        `yaml:"uploads_per_second"`
	Buffers          Buffers        `yaml:"buffers"`
}

// Load reads settings from path on top of the defaults. An empty path returns
// the defaults.
func Load(path string) (Settings, error) {
	s := defaults()
	if strings.TrimSpace(path) == "" {
		s.Normalize()
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	s := defaults()
	s.Normalize()
	return s
}

func defaults() Settings {
	return Settings{
		RenderDistance: RenderDistance{X: 8, Y: 1, Z: 8},
		Generator:      "heightmap",
		FPSLimit:       60,
		Buffers: Buffers{
			VertexInitBytes:   64 << 20,
			IndexInitBytes:    64 << 20,
			InstanceInitBytes: 1 << 20,
			VertexMinPage:     128 << 10,
			IndexMinPage:      128 << 10,
			InstanceMinPage:   1 << 10,
		},
	}
}

// Normalize fills unset values and canonicalizes names.
func (s *Settings) Normalize() {
	s.Generator = strings.ToLower(strings.TrimSpace(s.Generator))
	if s.Generator == "" {
		s.Generator = "heightmap"
	}
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU()
	}
	d := defaults().Buffers
	b := &s.Buffers
	for _, f := range []struct {
		v   *int
		def int
	}{
		{&b.VertexInitBytes, d.VertexInitBytes},
		{&b.IndexInitBytes, d.IndexInitBytes},
		{&b.InstanceInitBytes, d.InstanceInitBytes},
		{&b.VertexMinPage, d.VertexMinPage},
		{&b.IndexMinPage, d.IndexMinPage},
		{&b.InstanceMinPage, d.InstanceMinPage},
	} {
		if *f.v <= 0 {
			*f.v = f.def
		}
	}
}

// Validate rejects settings the engine cannot run with.
func (s Settings) Validate() error {
	var errs []error
	rd := s.RenderDistance
	if rd.X < MinRenderDistance || rd.X > MaxRenderDistance || rd.Z < MinRenderDistance || rd.Z > MaxRenderDistance {
		errs = append(errs, fmt.Errorf("render_distance x/z must be in [%d, %d], got %d/%d",
			MinRenderDistance, MaxRenderDistance, rd.X, rd.Z))
	}
	if rd.Y < 0 {
		errs = append(errs, fmt.Errorf("render_distance y must not be negative, got %d", rd.Y))
	}
	switch s.Generator {
	case "flat", "heightmap":
	default:
		errs = append(errs, fmt.Errorf("unknown generator %q", s.Generator))
	}
	if s.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("fps_limit must not be negative, got %d", s.FPSLimit))
	}
	if s.UploadsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("uploads_per_second must not be negative, got %g", s.UploadsPerSecond))
	}
	return errors.Join(errs...)
}
