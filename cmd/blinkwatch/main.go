// Blink rate monitor - consumes eye landmarks, detects blinks, and alerts on
// sustained low blink rates.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/capture"
	"github.com/blinkwatch/blinkwatch/internal/config"
	"github.com/blinkwatch/blinkwatch/internal/notify"
	"github.com/blinkwatch/blinkwatch/internal/orchestrator"
	"github.com/blinkwatch/blinkwatch/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the landmark capture source. No capture means no session.
	source := capture.NewWSSource(cfg.CaptureURL)
	if err := source.Start(ctx); err != nil {
		slog.Error("failed to connect to capture source", "url", cfg.CaptureURL, "error", err)
		os.Exit(1)
	}
	defer source.Stop()

	mgr := orchestrator.New(cfg.Detection(), cfg.AlertParams(), source, notify.New(cfg.NotifyMode), nil)
	srv := server.New(mgr)

	// Run the detection loop in background
	go func() {
		if err := mgr.Run(ctx); err != nil {
			slog.Error("session error", "error", err)
		}
	}()

	// Live-reload the alert tunables on config file changes
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(c *config.Config) {
				mgr.ApplyAlertParams(c.AlertParams())
			})
			if err != nil {
				slog.Warn("config watch unavailable", "error", err)
			}
		}()
	}

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("blinkwatch starting", "http", cfg.HTTPAddr, "capture", cfg.CaptureURL)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()
	source.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
