package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/uzochukwueddie/spin-the-match/internal/adapters/presets"
	"github.com/uzochukwueddie/spin-the-match/internal/adapters/tui"
	"github.com/uzochukwueddie/spin-the-match/internal/app"
	"github.com/uzochukwueddie/spin-the-match/internal/domain"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Float64() float64 { return rand.Float64() }

type options struct {
	preset         string
	nameA, nameB   string
	colorA, colorB string
	sound          bool
	logPath        string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.preset, "preset", "teams", "entity preset")
	flag.StringVar(&o.nameA, "a", "", "name of the first entity")
	flag.StringVar(&o.nameB, "b", "", "name of the second entity")
	flag.StringVar(&o.colorA, "color-a", "", "color of the first entity (#rrggbb)")
	flag.StringVar(&o.colorB, "color-b", "", "color of the second entity (#rrggbb)")
	flag.BoolVar(&o.sound, "sound", true, "play a chime when the result is revealed")
	flag.StringVar(&o.logPath, "log", "", "write JSON logs to this file")
	flag.Parse()
	return o
}

func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func seedEntity(ctx context.Context, svc *app.WheelService, id string, side domain.Side, name, color string) error {
	var upd app.EntityUpdate
	if name != "" {
		upd.Name = &name
	}
	if color != "" {
		upd.Color = &color
	}
	if upd.Name == nil && upd.Color == nil {
		return nil
	}
	_, err := svc.UpdateEntity(ctx, id, side, upd)
	return err
}

func run(o options) error {
	logger, closeLog, err := newLogger(o.logPath)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	var chime tui.Chime = tui.NopChime{}
	if o.sound {
		if sc, err := tui.NewSpeakerChime(); err != nil {
			// Non-fatal, the wheel works without sound.
			logger.Warn("audio unavailable", "error", err)
		} else {
			chime = sc
		}
	}
	defer chime.Close()

	loop := tui.NewLoop(screen, chime, logger)
	svc := app.NewWheelService(app.Deps{
		Presets:   presets.NewEmbeddedStore(),
		Animator:  loop,
		Scheduler: loop,
		Publisher: loop,
		RNG:       stdRNG{},
		Logger:    logger,
	}, app.Options{DefaultPreset: o.preset, MaxWheels: 1})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := svc.CreateWheel(ctx, o.preset)
	if err != nil {
		return err
	}
	if err := seedEntity(ctx, svc, res.WheelID, domain.SideA, o.nameA, o.colorA); err != nil {
		return err
	}
	if err := seedEntity(ctx, svc, res.WheelID, domain.SideB, o.nameB, o.colorB); err != nil {
		return err
	}

	return loop.Run(ctx, svc, res.WheelID)
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "wheeltui: %v\n", err)
		os.Exit(1)
	}
}
