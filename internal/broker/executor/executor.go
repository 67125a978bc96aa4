package executor

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
)

// shellPath is the shell used for the local execution path.
const shellPath = "sh"

// BrokerExecutor is the default Executor implementation.
type BrokerExecutor struct {
	channel Channel
	logger  *slog.Logger
}

// NewBrokerExecutor creates an executor backed by the given channel. A nil
// channel restricts execution to the local path.
func NewBrokerExecutor(channel Channel, logger *slog.Logger) *BrokerExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrokerExecutor{channel: channel, logger: logger}
}

// Exec implements Executor. The channel can disconnect between the
// availability check and the dispatch, so any channel failure falls back
// to local execution instead of surfacing.
func (e *BrokerExecutor) Exec(ctx context.Context, command string) string {
	if e.channel != nil && e.channel.IsAvailable() {
		out, err := e.channel.Exec(ctx, command)
		if err == nil {
			return out
		}
		e.logger.Debug("Channel dispatch failed, falling back to local execution",
			"error", err)
	}
	return e.execLocal(ctx, command)
}

// execLocal spawns a shell, captures stdout and waits for completion.
// Failure yields an empty string, never an error.
func (e *BrokerExecutor) execLocal(ctx context.Context, command string) string {
	// #nosec G204 -- externally supplied commands pass the gate first
	cmd := exec.CommandContext(ctx, shellPath, "-c", command)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		e.logger.Debug("Local execution failed", "error", err)
	}
	return stdout.String()
}
