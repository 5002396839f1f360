package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/reportbot/internal/archive"
	"git.home.luguber.info/inful/reportbot/internal/config"
	"git.home.luguber.info/inful/reportbot/internal/engine"
	"git.home.luguber.info/inful/reportbot/internal/generate"
	"git.home.luguber.info/inful/reportbot/internal/metrics"
	"git.home.luguber.info/inful/reportbot/internal/notify"
	"git.home.luguber.info/inful/reportbot/internal/server"
	"git.home.luguber.info/inful/reportbot/internal/source"
	"git.home.luguber.info/inful/reportbot/internal/state"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" help:"Run the scheduler daemon with the status HTTP server"`

	Check struct{} `cmd:"" help:"Run a single check now and print the result"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "serve":
		cfg := mustLoadConfig()
		if err := runServe(cfg); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "check":
		cfg := mustLoadConfig()
		if err := runCheck(cfg); err != nil {
			slog.Error("Check failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration file created", "path", CLI.Config)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging := cfg.Logging
	if CLI.Verbose {
		logging.Level = string(config.LogLevelDebug)
	}
	slog.SetDefault(logging.BuildLogger())
	return cfg
}

// buildEngine wires the component graph for both serve and check.
func buildEngine(ctx context.Context, cfg *config.Config, recorder metrics.Recorder) (*engine.Engine, *archive.Store, func(), error) {
	store, err := state.NewStore(cfg.State.Path, cfg.ReminderCap())
	if err != nil {
		return nil, nil, nil, err
	}

	archiveStore, err := archive.NewStore(cfg.Archive.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open archive: %w", err)
	}

	generator, err := generate.NewGeminiGenerator(ctx, cfg.Generator)
	if err != nil {
		_ = archiveStore.Close()
		return nil, nil, nil, err
	}

	notifier, closeNotifier, err := buildNotifier(cfg)
	if err != nil {
		_ = archiveStore.Close()
		return nil, nil, nil, err
	}

	fetcher := source.NewFetcher(cfg.Source.FetchTimeoutDuration())
	eng := engine.New(cfg, store, fetcher, generator, notifier, archiveStore, recorder)

	cleanup := func() {
		closeNotifier()
		if err := archiveStore.Close(); err != nil {
			slog.Warn("Failed to close archive", "error", err)
		}
	}
	return eng, archiveStore, cleanup, nil
}

func buildNotifier(cfg *config.Config) (notify.Notifier, func(), error) {
	switch cfg.Notify.Transport {
	case "nats":
		n, err := notify.NewNATSNotifier(cfg.Notify.NATS)
		if err != nil {
			return nil, nil, err
		}
		return n, n.Close, nil
	default:
		n, err := notify.NewSlackNotifier(cfg.Notify.Slack)
		if err != nil {
			return nil, nil, err
		}
		return n, func() {}, nil
	}
}

func runServe(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	eng, archiveStore, cleanup, err := buildEngine(ctx, cfg, recorder)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	watcher, err := engine.NewConfigWatcher(CLI.Config, eng)
	if err != nil {
		slog.Warn("Config watcher unavailable, hot reload disabled", "error", err)
	} else if err := watcher.Start(ctx); err != nil {
		slog.Warn("Failed to start config watcher", "error", err)
		watcher = nil
	}

	srv := server.New(cfg.Server.Addr, eng, archiveStore, registry)
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	slog.Info("reportbot started, waiting for shutdown signal")

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if watcher != nil {
		watcher.Stop()
	}
	if err := srv.Stop(stopCtx); err != nil {
		slog.Warn("Failed to stop HTTP server", "error", err)
	}
	if err := eng.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop engine: %w", err)
	}

	slog.Info("reportbot stopped")
	return nil
}

// runCheck executes one check outside the scheduler and prints the
// result as JSON, so cron-style deployments can drive the bot without
// the daemon.
func runCheck(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	eng, _, cleanup, err := buildEngine(ctx, cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer cleanup()

	result := eng.ManualCheck(ctx)
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if result.Err != "" {
		return fmt.Errorf("check failed: %s", result.Err)
	}
	return nil
}
