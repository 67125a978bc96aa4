package channel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mkoba/go-droid-broker/internal/broker/brokertypes"
)

// Channel tracks the binding state of the elevated execution service and
// classifies its privilege level.
//
// The binding state is written exclusively by the binder's connect and
// disconnect callbacks; command-issuing code only reads it. Readers must
// tolerate the state changing between a read and the subsequent use, which
// is why callers of Exec carry their own fallback.
type Channel struct {
	mu     sync.RWMutex
	binder Binder
	desc   Descriptor
	logger *slog.Logger

	bound bool
	svc   RemoteService
}

// New creates a channel driven by the given binder.
func New(binder Binder, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		binder: binder,
		desc:   DefaultDescriptor(),
		logger: logger,
	}
}

// Bind requests the platform grant and, if granted, a service binding.
// Bind is fire-and-forget: failures are logged and swallowed, and callers
// discover them via IsAvailable returning false. Re-binding while already
// bound is a no-op.
func (c *Channel) Bind() {
	if c.IsAvailable() {
		return
	}
	if !c.IsPermissionGranted() {
		c.logger.Warn("Shell service permission not granted, channel stays unbound")
		return
	}
	if err := c.binder.Bind(c.desc, c); err != nil {
		c.logger.Warn("Shell service bind failed", "error", err)
	}
}

// Unbind releases the binding if held. Always safe to call.
func (c *Channel) Unbind() {
	if c.binder != nil {
		if err := c.binder.Unbind(); err != nil {
			c.logger.Warn("Shell service unbind failed", "error", err)
		}
	}
	c.Disconnected()
}

// IsPermissionGranted probes the platform permission. Never fails; any
// probe error reads as not granted.
func (c *Channel) IsPermissionGranted() bool {
	if c.binder == nil {
		return false
	}
	return c.binder.PermissionGranted()
}

// IsAvailable reports whether the binding is established and the remote
// handle is live.
func (c *Channel) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bound && c.svc != nil
}

// PrivilegeLevel classifies the channel's current effective identity. It
// returns PrivilegeNone without querying when the channel is unavailable,
// and treats any query failure as PrivilegeNone. The level is recomputed
// on every call; the bound identity can change between grants.
func (c *Channel) PrivilegeLevel(ctx context.Context) brokertypes.PrivilegeLevel {
	c.mu.RLock()
	svc := c.svc
	bound := c.bound
	c.mu.RUnlock()

	if !bound || svc == nil {
		return brokertypes.PrivilegeNone
	}

	uid, err := svc.UID(ctx)
	if err != nil {
		c.logger.Warn("Shell service UID query failed", "error", err)
		return brokertypes.PrivilegeNone
	}
	return brokertypes.ClassifyUID(uid)
}

// Exec dispatches a command to the bound service.
func (c *Channel) Exec(ctx context.Context, command string) (string, error) {
	c.mu.RLock()
	svc := c.svc
	c.mu.RUnlock()

	if svc == nil {
		return "", brokertypes.ErrChannelUnavailable
	}
	return svc.Exec(ctx, command)
}

// Connected implements ConnectionHandler. Called by the binder when the
// platform delivers a connect callback.
func (c *Channel) Connected(svc RemoteService) {
	c.mu.Lock()
	c.bound = true
	c.svc = svc
	c.mu.Unlock()
	c.logger.Info("Shell service connected",
		"component", c.desc.Package+"/"+c.desc.Class,
		"protocol_version", c.desc.Version)
}

// Disconnected implements ConnectionHandler. Called on disconnect or
// explicit unbind.
func (c *Channel) Disconnected() {
	c.mu.Lock()
	wasBound := c.bound
	svc := c.svc
	c.bound = false
	c.svc = nil
	c.mu.Unlock()

	if svc != nil {
		_ = svc.Close()
	}
	if wasBound {
		c.logger.Info("Shell service disconnected")
	}
}
