package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"voxstream/internal/config"
	"voxstream/internal/game"

	"github.com/faiface/mainthread"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "path to a settings.yaml file")
	debug      = flag.Bool("debug", false, "enable debug logging")
	frames     = flag.Int("frames", 0, "stop after this many frames (0 runs until interrupted)")
	speed      = flag.Float64("speed", 8, "observer speed along +X in blocks per second")
	diagEvery  = flag.Int("diag", 120, "log a status line every N frames")
)

func main() {
	flag.Parse()
	mainthread.Run(run)
}

func newLogger() (*zap.Logger, error) {
	if *debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run() {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load settings", zap.String("path", *configPath), zap.Error(err))
	}
	logger.Info("starting",
		zap.String("generator", settings.Generator),
		zap.Int64("seed", settings.Seed),
		zap.Int("workers", settings.Workers),
		zap.Any("render_distance", settings.RenderDistance))

	session, err := game.NewSession(game.SessionOptions{
		Settings:         settings,
		Velocity:         mgl32.Vec3{float32(*speed), 0, 0},
		DiagnosticsEvery: *diagEvery,
		// Device uploads have to happen on the thread that owns the context.
		Upload: func(buffer string, offset int, data []byte) {
			mainthread.Call(func() {
				logger.Debug("buffer upload", zap.String("buffer", buffer), zap.Int("offset", offset), zap.Int("bytes", len(data)))
			})
		},
	}, logger)
	if err != nil {
		logger.Fatal("create session", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	closer.Bind(func() {
		cancel()
		<-done
		session.Cleanup()
		logger.Info("shutdown", zap.Int("frames", session.Frames))
		_ = logger.Sync()
	})

	err = game.NewApp(session, logger).Run(ctx, *frames)
	close(done)
	if err != nil {
		logger.Error("run", zap.Error(err))
	}
	closer.Close()
}
