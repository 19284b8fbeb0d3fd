package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uzochukwueddie/spin-the-match/internal/adapters/animation"
	httpadapter "github.com/uzochukwueddie/spin-the-match/internal/adapters/http"
	"github.com/uzochukwueddie/spin-the-match/internal/adapters/presets"
	"github.com/uzochukwueddie/spin-the-match/internal/adapters/webhook"
	"github.com/uzochukwueddie/spin-the-match/internal/adapters/ws"
	"github.com/uzochukwueddie/spin-the-match/internal/app"
	"github.com/uzochukwueddie/spin-the-match/internal/config"
	"github.com/uzochukwueddie/spin-the-match/internal/ports"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Float64() float64 { return rand.Float64() }

// lateHub lets the service publish to a hub that needs the service to exist.
type lateHub struct{ hub *ws.Hub }

func (l *lateHub) Publish(ctx context.Context, ev ports.Event) {
	if l.hub != nil {
		l.hub.Publish(ctx, ev)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	stream := &lateHub{}
	publishers := ports.Publishers{stream}
	if cfg.WebhookEnabled() {
		publishers = append(publishers, webhook.NewNotifier(
			&http.Client{Timeout: cfg.WebhookTimeout},
			cfg.WebhookToken,
			cfg.WebhookURL,
			cfg.WebhookFallbackURLs,
			logger,
		))
		logger.Info("webhook enabled", "url", cfg.WebhookURL, "fallbacks", len(cfg.WebhookFallbackURLs))
	}

	svc := app.NewWheelService(app.Deps{
		Presets:   presets.NewEmbeddedStore(),
		Animator:  animation.NewTimerAnimator(),
		Scheduler: animation.NewTimeScheduler(),
		Publisher: publishers,
		RNG:       stdRNG{},
		Logger:    logger,
	}, app.Options{
		DefaultPreset: cfg.DefaultPreset,
		MaxWheels:     cfg.MaxWheels,
		IdleTTL:       cfg.WheelIdleTTL,
	})

	hub := ws.NewHub(svc, cfg.CORSAllowedOrigins, logger)
	stream.hub = hub

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))
	e.Use(httpadapter.CORSMiddleware(cfg.CORSAllowedOrigins))

	handler := httpadapter.NewHandler(svc, hub)
	handler.Register(e)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)
	if cfg.WheelIdleTTL > 0 {
		go evictIdleWheels(ctx, svc, cfg.WheelIdleTTL)
	}

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// evictIdleWheels sweeps abandoned wheels until ctx is done.
func evictIdleWheels(ctx context.Context, svc *app.WheelService, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.EvictIdle(ctx)
		}
	}
}
