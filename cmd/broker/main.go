// Package main provides the entry point for the device control broker.
// It loads configuration, binds the elevated execution channel, and serves
// the local control API until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mkoba/go-droid-broker/internal/broker/channel"
	"github.com/mkoba/go-droid-broker/internal/broker/config"
	"github.com/mkoba/go-droid-broker/internal/broker/device"
	"github.com/mkoba/go-droid-broker/internal/broker/dispatch"
	"github.com/mkoba/go-droid-broker/internal/broker/executor"
	"github.com/mkoba/go-droid-broker/internal/broker/gate"
	"github.com/mkoba/go-droid-broker/internal/broker/input"
	"github.com/mkoba/go-droid-broker/internal/broker/launcher"
	"github.com/mkoba/go-droid-broker/internal/broker/screen"
	"github.com/mkoba/go-droid-broker/internal/logging"
	"github.com/mkoba/go-droid-broker/internal/server"
)

const shutdownTimeout = 5 * time.Second

var (
	configPath       = flag.String("config", "", "path to config file")
	logLevel         = flag.String("log-level", "", "log level (debug, info, warn, error); overrides config")
	logDir           = flag.String("log-dir", "", "directory to place per-run JSON log (auto-named); overrides config")
	listenAddr       = flag.String("listen", "", "control API listen address; overrides config")
	socketPath       = flag.String("socket", "", "shell service socket path; overrides config")
	forceInteractive = flag.Bool("interactive", false, "force interactive console output")
	forceQuiet       = flag.Bool("quiet", false, "suppress console output")
)

func main() {
	runID := ulid.Make().String()

	if err := run(runID); err != nil {
		fmt.Fprintf(os.Stderr, "broker: %v\n", err)
		os.Exit(1)
	}
}

func run(runID string) error {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewLoader().Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cfg)

	if err := setupLogger(cfg, runID); err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	logger := slog.Default()
	logger.Info("Broker starting", "run_id", runID, "listen", cfg.Listen, "socket", cfg.Socket)

	store := config.NewStore(cfg.Security, logger)

	// Elevated execution channel. Bind is fire-and-forget; the executor
	// falls back to local execution until the binding is live.
	binder := channel.NewSocketBinder(cfg.Socket)
	ch := channel.New(binder, logger)
	ch.Bind()
	defer ch.Unbind()

	exec := executor.NewBrokerExecutor(ch, logger)

	ui := input.NewSerialDispatcher()
	defer ui.Stop()
	injector := input.New(exec,
		input.WithUIDispatcher(ui),
		input.WithLogger(logger),
	)

	capturer := screen.New(exec, screen.WithLogger(logger))
	apps := launcher.New(exec, logger)
	dev := device.New(exec, logger)
	cmdGate := gate.New(store, logger)

	dispatcher := dispatch.New(cmdGate, exec, injector, capturer, apps, dev, logger)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(ch, dispatcher, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Control API listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("control API server failed: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Control API shutdown incomplete", "error", err)
	}
	logger.Info("Broker stopped", "run_id", runID)
	return nil
}

// applyFlagOverrides lets command line arguments take precedence over the
// config file.
func applyFlagOverrides(cfg *config.Config) {
	if *listenAddr != "" {
		cfg.Listen = *listenAddr
	}
	if *socketPath != "" {
		cfg.Socket = *socketPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}
}

func setupLogger(cfg *config.Config, runID string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return logging.Setup(logging.Config{
		Level:  level,
		LogDir: cfg.LogDir,
		RunID:  runID,
	}, *forceInteractive, *forceQuiet)
}
