package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mkoba/go-droid-broker/internal/common"
	"github.com/mkoba/go-droid-broker/internal/terminal"
)

const (
	// File permissions for log files
	logFilePerm = 0o600
)

// Config holds all configuration for logger setup.
type Config struct {
	Level         slog.Level
	LogDir        string
	RunID         string
	ConsoleWriter io.Writer // Writer for console output (stderr by default)
}

// Setup initializes the logging system and installs the result as the
// default slog logger.
//
// This function must be called exactly once during startup, before any
// logging occurs. It is not safe for concurrent use.
func Setup(config Config, forceInteractive, forceQuiet bool) error {
	hostname := common.GetHostname()
	timestamp := time.Now().Format("20060102T150405Z")

	var handlers []slog.Handler

	detector := terminal.NewInteractiveDetector(terminal.DetectorOptions{
		ForceInteractive:    forceInteractive,
		ForceNonInteractive: forceQuiet,
	})

	// 1. Console text handler
	consoleWriter := config.ConsoleWriter
	if consoleWriter == nil {
		consoleWriter = os.Stderr
	}
	textOpts := &slog.HandlerOptions{Level: config.Level}
	if !detector.IsInteractive() {
		// Timestamps come from the log collector in daemon/CI runs.
		textOpts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		}
	}
	handlers = append(handlers, slog.NewTextHandler(consoleWriter, textOpts))

	// 2. Machine-readable log handler (to file, per-run auto-named)
	if config.LogDir != "" {
		logPath := filepath.Join(config.LogDir, fmt.Sprintf("%s_%s_%s.json", hostname, timestamp, config.RunID))
		logF, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, logFilePerm)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		jsonHandler := slog.NewJSONHandler(logF, &slog.HandlerOptions{Level: config.Level})
		enrichedHandler := jsonHandler.WithAttrs([]slog.Attr{
			slog.String("hostname", hostname),
			slog.Int("pid", os.Getpid()),
			slog.String("run_id", config.RunID),
		})
		handlers = append(handlers, enrichedHandler)
	}

	redactedHandler := NewRedactingHandler(NewMultiHandler(handlers...), nil)
	slog.SetDefault(slog.New(redactedHandler))

	slog.Info("Logger initialized",
		"log_level", config.Level,
		"log_dir", config.LogDir,
		"run_id", config.RunID,
		"hostname", hostname,
		"interactive_mode", detector.IsInteractive())

	return nil
}
