// Command accumulator-server runs the transcript accumulator as a standalone
// WebSocket service: one reconciliation session per connection, Prometheus
// metrics, and a liveness endpoint.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/davidbmar/transcription-realtime-whisper/internal/env"
	"github.com/davidbmar/transcription-realtime-whisper/internal/session"
)

// opts holds command-line options. The port flag outranks the
// ACCUMULATOR_PORT environment variable.
type opts struct {
	ConfigFile string `short:"c" long:"config" default:"accumulator.yaml" description:"path to the reconciliation tuning file"`
	Port       string `short:"p" long:"port" description:"listen port, overrides ACCUMULATOR_PORT"`
	Debug      bool   `short:"d" long:"debug" description:"enable debug-level logging"`
}

func main() {
	var o opts
	if _, err := flags.Parse(&o); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	t := loadTuning(o.ConfigFile)
	cfg := t.toAccumulatorConfig()

	port := o.Port
	if port == "" {
		port = env.Str("ACCUMULATOR_PORT", "8090")
	}

	registry := session.NewRegistry()

	mux := http.NewServeMux()
	registerRoutes(mux, registry, cfg)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: mux}

	go awaitShutdown(srv, registry)

	slog.Info("accumulator-server starting", "addr", addr, "stability_threshold", cfg.StabilityThreshold, "forced_flush_ms", cfg.ForcedFlushMs)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("accumulator-server stopped")
}

// awaitShutdown blocks until SIGINT/SIGTERM, logs how many sessions are
// still open, then stops the HTTP server, mirroring cmd/gateway/main.go's
// awaitShutdown. srv.Shutdown neither closes nor waits for the hijacked
// WebSocket connections, so open sessions are not drained here.
func awaitShutdown(srv *http.Server, registry *session.Registry) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig, "open_sessions", registry.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv.Shutdown(ctx)
}
