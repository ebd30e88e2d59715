package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/forage/api"
	"github.com/use-agent/forage/authbridge"
	"github.com/use-agent/forage/cache"
	"github.com/use-agent/forage/config"
	"github.com/use-agent/forage/fetch"
	"github.com/use-agent/forage/provider"
	"github.com/use-agent/forage/runtime"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("forage starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"nativeBackend", cfg.Runtime.NativeEnabled,
		"sandboxBackend", cfg.Runtime.SandboxEnabled,
	)

	// ── 3. Initialise fetcher ───────────────────────────────────────
	fetcher := fetch.New(cfg.Fetch)

	// ── 4. Assemble the extraction runtime ──────────────────────────
	// The built-in schema parser always runs; at most one specialized
	// backend sits in front of it.
	builtin := runtime.NewBuiltinBackend()

	var spec runtime.SpecializedBackend
	var sandbox *runtime.SandboxBackend
	switch {
	case cfg.Runtime.NativeEnabled:
		spec = runtime.NewRichBackend()
		slog.Info("rich extraction backend enabled")
	case cfg.Runtime.SandboxEnabled:
		sandbox = runtime.NewSandboxBackend(cfg.Browser)
		spec = sandbox
		slog.Info("sandbox extraction backend launching")
	}
	rt := runtime.NewFacade(builtin, spec)

	if sandbox != nil {
		defer sandbox.Close()
		if rt.WaitForReady(cfg.Runtime.SandboxReadyTimeout) {
			slog.Info("sandbox backend ready")
		} else {
			slog.Warn("sandbox backend not ready, serving with builtin parser",
				"waited", cfg.Runtime.SandboxReadyTimeout)
		}
	}

	// ── 5. Authentication bridge ────────────────────────────────────
	bridge := authbridge.New(authbridge.NewRodSessionFactory(cfg.Browser))
	defer bridge.Destroy()

	// ── 6. Provider registry + cache ────────────────────────────────
	registry := provider.DefaultRegistry(fetcher, rt, cfg.Discovery.MaxCategoryPages)
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 7. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(fetcher, rt, bridge, registry, cfg, cc, startTime)

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("forage stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
