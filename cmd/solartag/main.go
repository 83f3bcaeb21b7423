package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/solartag/internal/config"
	"codeberg.org/mutker/solartag/internal/cycle"
	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/logger"
	"codeberg.org/mutker/solartag/internal/pid"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.Init(level, logger.IsService())
	logger.Debug().Str("mode", string(cfg.Mode)).Msg("Config loaded")

	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := pid.Write(cfg.PIDDir); err != nil {
		logError(err, "Refusing to start cycle")
		return 1
	}
	defer func() {
		if err := pid.Remove(cfg.PIDDir); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	for {
		halt := wake(ctx, cfg)

		if cfg.Mode == config.ModeOneshot {
			logger.Info().Dur("wake_after", halt.WakeAfter).Msg("Halting until wake alarm")
			return 0
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("Received termination signal.")
			return 0
		case <-time.After(halt.WakeAfter):
		}
	}
}

// wake runs one cold cycle: bring the device up, check the link, run the
// orchestrator and tear everything down again.
func wake(ctx context.Context, cfg *config.Config) cycle.Halt {
	dev, err := newDevice(ctx, cfg)
	if err != nil {
		// Without a device there is no alarm to arm; retry after the link
		// delay in loop mode, exit in oneshot mode.
		logError(err, "Failed to initialize device")
		return cycle.LinkRetry()
	}
	defer dev.Close()

	if err := dev.link.CheckLink(ctx); err != nil {
		logError(err, "Network link unavailable, restarting shortly")
		halt := cycle.LinkRetry()
		if err := dev.Alarm.Arm(ctx, halt.WakeAfter); err != nil {
			logError(err, "Failed to arm wake alarm")
		}
		return halt
	}

	orchestrator, err := cycle.New(dev.Device)
	if err != nil {
		logError(err, "Failed to create orchestrator")
		return cycle.LinkRetry()
	}

	return orchestrator.Run(ctx).Halt
}

func logError(err error, msg string) {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		logger.ErrorWithCode(appErr).Msg(msg)
		return
	}
	logger.Error().Err(err).Msg(msg)
}
