// Package gate is the security filter in front of arbitrary shell
// execution. Externally supplied (agent-issued) commands pass through
// Validate before they reach the executor.
package gate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/shlex"
)

// Settings is the read-only view of the two security flags the gate
// consults. Injected at construction so the two-flag invariant is
// testable in isolation.
type Settings interface {
	// ElevatedModeEnabled reports whether elevated capability is on.
	ElevatedModeEnabled() bool
	// SuperuserCommandsAllowed reports whether raw superuser command
	// execution has been explicitly opted into.
	SuperuserCommandsAllowed() bool
}

// Verdict is the outcome of validating one command. It carries no state
// across calls.
type Verdict struct {
	Allowed bool
	Reason  string
}

// blockedPatterns are dangerous substrings that are always denied,
// matched case-insensitively against the trimmed command. First match wins.
var blockedPatterns = []string{
	"rm -rf",      // recursive force-delete
	"mkfs",        // filesystem format
	"dd of=/dev/", // raw block-device write
	"reboot",
	"shutdown",
	"> /dev/",     // device-file redirection
	"chmod 777 /", // world-writable root
}

// allowedPrefixes is the optional stricter posture: a fixed set of
// device-control verbs matched by prefix. Disabled by default; deny-list
// enforcement alone is the shipped behavior.
var allowedPrefixes = []string{
	"input ",
	"screencap ",
	"am ",
	"pm ",
	"monkey ",
	"wm ",
	"cmd ",
	"settings ",
	"dumpsys ",
	"getprop",
}

// superuserReason names the two settings so users know exactly what to
// enable; it is deliberately distinct from the generic denial.
const superuserReason = "superuser commands are disabled: enable elevated mode and allow superuser commands in settings"

// Gate validates agent-issued commands against the deny-list and the
// conditionally blocked superuser pattern.
type Gate struct {
	settings Settings
	logger   *slog.Logger

	// enforceAllowlist turns on the prefix allow-list. Off by default.
	enforceAllowlist bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithAllowlistEnforcement enables the stricter allow-list posture.
func WithAllowlistEnforcement() Option {
	return func(g *Gate) { g.enforceAllowlist = true }
}

// New creates a gate reading the given settings.
func New(settings Settings, logger *slog.Logger, opts ...Option) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{settings: settings, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Validate computes a verdict for the command. The verdict is computed
// per invocation from the command text and the current settings.
func (g *Gate) Validate(command string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(command))

	for _, pattern := range blockedPatterns {
		if strings.Contains(normalized, pattern) {
			g.logger.Warn("Command denied by security policy", "pattern", pattern)
			return Verdict{
				Allowed: false,
				Reason:  fmt.Sprintf("command blocked by security policy: contains %q", pattern),
			}
		}
	}

	if g.isSuperuserCommand(normalized) {
		// A deliberate two-flag gate: enabling elevated capability alone
		// must not silently enable raw superuser execution.
		if !g.settings.ElevatedModeEnabled() || !g.settings.SuperuserCommandsAllowed() {
			g.logger.Warn("Superuser command denied",
				"elevated_mode", g.settings.ElevatedModeEnabled(),
				"superuser_allowed", g.settings.SuperuserCommandsAllowed())
			return Verdict{Allowed: false, Reason: superuserReason}
		}
	}

	if g.enforceAllowlist && !g.matchesAllowlist(normalized) {
		return Verdict{
			Allowed: false,
			Reason:  "command not in the device-control allow-list",
		}
	}

	return Verdict{Allowed: true}
}

// isSuperuserCommand reports whether the command invokes the superuser
// wrapper, either as the leading token or via the su -c idiom anywhere in
// a compound command.
func (g *Gate) isSuperuserCommand(normalized string) bool {
	if strings.Contains(normalized, "su -c") {
		return true
	}
	tokens, err := shlex.Split(normalized)
	if err != nil {
		// Unparseable quoting: fall back to the raw first field.
		tokens = strings.Fields(normalized)
	}
	return len(tokens) > 0 && tokens[0] == "su"
}

// matchesAllowlist reports whether the command starts with one of the
// fixed device-control verbs.
func (g *Gate) matchesAllowlist(normalized string) bool {
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(normalized, prefix) || normalized == strings.TrimSpace(prefix) {
			return true
		}
	}
	return false
}
