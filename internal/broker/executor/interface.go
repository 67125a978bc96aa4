// Package executor routes device shell commands to the best available
// execution path: the elevated channel when bound, the local shell
// otherwise. Callers never distinguish the two paths.
package executor

import "context"

// Channel is the elevated execution path consumed by the executor.
// *channel.Channel satisfies it; tests inject fakes that toggle
// availability mid-test.
type Channel interface {
	IsAvailable() bool
	Exec(ctx context.Context, command string) (string, error)
}

// Executor defines the interface for running device shell commands.
type Executor interface {
	// Exec runs a command and returns its captured standard output.
	// Execution failures degrade rather than propagate: channel failures
	// fall back to local execution, and local failures yield an empty
	// string. Exec never returns an error.
	Exec(ctx context.Context, command string) string
}
