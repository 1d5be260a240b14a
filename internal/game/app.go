package game

import (
	"context"
	"time"

	"voxstream/internal/profiling"

	"go.uber.org/zap"
)

// slowFrame is the tick duration above which the top profiled tasks are logged.
const slowFrame = 16 * time.Millisecond

// App drives a Session at the configured frame rate until it is stopped.
type App struct {
	log     *zap.Logger
	session *Session

	fpsLimiter *FPSLimiter
	lastTime   time.Time
}

func NewApp(session *Session, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		log:        logger.Named("app"),
		session:    session,
		fpsLimiter: NewFPSLimiter(),
		lastTime:   time.Now(),
	}
}

// Run ticks until ctx is cancelled or maxFrames ticks have run. A maxFrames of
// zero runs until cancellation.
func (a *App) Run(ctx context.Context, maxFrames int) error {
	for frame := 0; maxFrames <= 0 || frame < maxFrames; frame++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := a.tick(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) tick() error {
	profiling.ResetFrame()
	start := time.Now()
	dt := start.Sub(a.lastTime).Seconds()
	a.lastTime = start

	if err := a.session.Update(dt); err != nil {
		return err
	}

	if d := time.Since(start); d > slowFrame {
		a.log.Debug("slow frame", zap.Duration("took", d), zap.String("top", profiling.TopN(5)))
	}

	a.fpsLimiter.Wait()
	return nil
}
