package game

import (
	"fmt"

	"voxstream/internal/config"
	"voxstream/internal/meshing"
	"voxstream/internal/profiling"
	"voxstream/internal/render"
	"voxstream/internal/sched"
	"voxstream/internal/terrain"
	"voxstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// SessionOptions configures a headless streaming session.
type SessionOptions struct {
	Settings config.Settings
	// Velocity moves the observer in world units per second.
	Velocity mgl32.Vec3
	// DiagnosticsEvery logs a status line every N frames; zero disables it.
	DiagnosticsEvery int
	// Upload receives dirty buffer ranges each frame; nil discards them.
	Upload render.UploadFunc
}

// Session owns everything that lives on the control thread: the observer and
// its view, the renderer and the main-thread job queue.
type Session struct {
	log *zap.Logger

	Scheduler *sched.Scheduler
	World     *world.World
	Observer  *world.Observer
	Renderer  *render.Renderer

	opts   SessionOptions
	radius world.ChunkPos
	Frames int
}

// NewSession wires the pipeline together and loads the initial window around
// the spawn point. It applies opts.Settings to the runtime config and clears
// profiler stats left by a previous session.
func NewSession(opts SessionOptions, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := opts.Settings
	// Runtime settings start from the session's settings; later changes go
	// through the config setters.
	config.Apply(st)
	profiling.Reset()

	gen, err := terrain.New(st.Generator, st.Seed)
	if err != nil {
		return nil, err
	}

	s := sched.New(sched.Options{Workers: st.Workers, JobsPerSecond: st.UploadsPerSecond})
	w := world.New(gen, meshing.NewBlockyGenerator(), s, logger)
	r := render.NewRenderer(render.Options{
		VertexBytes:     st.Buffers.VertexInitBytes,
		IndexBytes:      st.Buffers.IndexInitBytes,
		InstanceBytes:   st.Buffers.InstanceInitBytes,
		VertexMinPage:   st.Buffers.VertexMinPage,
		IndexMinPage:    st.Buffers.IndexMinPage,
		InstanceMinPage: st.Buffers.InstanceMinPage,
	}, logger)

	spawn := mgl32.Vec3{0, float32(gen.HeightAt(0, 0)) + 2, 0}
	session := &Session{
		log:       logger.Named("session"),
		Scheduler: s,
		World:     w,
		Observer:  world.NewObserver(w, r, s, spawn),
		Renderer:  r,
		opts:      opts,
	}
	if err := session.recreateView(); err != nil {
		s.Shutdown()
		return nil, err
	}
	return session, nil
}

func renderDistance() world.ChunkPos {
	rd := config.GetRenderDistance()
	return world.ChunkPos{X: rd.X, Y: rd.Y, Z: rd.Z}
}

func (s *Session) recreateView() error {
	s.radius = renderDistance()
	if _, err := s.Observer.RecreateWorldView(s.radius); err != nil {
		return fmt.Errorf("recreate world view: %w", err)
	}
	return nil
}

// Update advances the session by dt seconds.
func (s *Session) Update(dt float64) error {
	if rd := renderDistance(); rd != s.radius {
		s.log.Info("render distance changed", zap.Stringer("from", s.radius), zap.Stringer("to", rd))
		if err := s.recreateView(); err != nil {
			return err
		}
	}

	func() {
		defer profiling.Track("world.Observer.Move")()
		if err := s.Observer.Move(s.opts.Velocity.Mul(float32(dt))); err != nil {
			s.log.Warn("observer move", zap.Error(err))
		}
	}()

	func() {
		defer profiling.Track("sched.Process")()
		s.Scheduler.Process()
	}()

	func() {
		defer profiling.Track("render.Flush")()
		upload := s.opts.Upload
		if upload == nil {
			upload = func(string, int, []byte) {}
		}
		s.Renderer.Flush(upload)
	}()

	s.Frames++
	if n := s.opts.DiagnosticsEvery; n > 0 && s.Frames%n == 0 {
		s.logDiagnostics()
	}
	return nil
}

func (s *Session) logDiagnostics() {
	pool := s.Scheduler.Pool()
	fields := []zap.Field{
		zap.Int("frame", s.Frames),
		zap.Stringer("chunk", s.Observer.ChunkPosition()),
		zap.Int("loaded", s.World.Len()),
		zap.Int("main_jobs", s.Scheduler.JobCount()),
		zap.Int("workers", pool.Workers()),
		zap.Int("pool_queued", pool.GetQueueLength()),
		zap.Int("pool_running", pool.Running()),
		zap.Int("uploads", s.Renderer.Uploads()),
		zap.Int("destroys", s.Renderer.Destroys()),
		zap.String("top", profiling.TopN(5)),
	}
	if v := s.Renderer.View(); v != nil {
		fields = append(fields, zap.Stringer("buffers", v.Stats()))
	}
	s.log.Info("status", fields...)
}

// Cleanup unloads the window and stops the workers.
func (s *Session) Cleanup() {
	if v := s.Observer.View(); v != nil {
		if err := v.Close(); err != nil {
			s.log.Warn("close world view", zap.Error(err))
		}
	}
	s.World.Close()
	s.Scheduler.Shutdown()
}
