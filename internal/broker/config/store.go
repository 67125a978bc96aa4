package config

import (
	"log/slog"
	"sync"
)

// Store holds the runtime security settings. It implements the gate's
// Settings interface and maintains the invariant that superuser command
// execution is never permitted without elevated mode.
type Store struct {
	mu                     sync.RWMutex
	elevatedMode           bool
	allowSuperuserCommands bool
	logger                 *slog.Logger
}

// NewStore creates a store seeded from the file configuration. The
// invariant is enforced at construction too: a config enabling superuser
// commands without elevated mode reads back as superuser-disabled.
func NewStore(sec SecurityConfig, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		elevatedMode:           sec.ElevatedMode,
		allowSuperuserCommands: sec.AllowSuperuserCommands && sec.ElevatedMode,
		logger:                 logger,
	}
	return s
}

// ElevatedModeEnabled implements gate.Settings.
func (s *Store) ElevatedModeEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elevatedMode
}

// SuperuserCommandsAllowed implements gate.Settings.
func (s *Store) SuperuserCommandsAllowed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowSuperuserCommands
}

// SetElevatedMode toggles elevated capability. Turning it off also forces
// the superuser allowance off.
func (s *Store) SetElevatedMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elevatedMode = enabled
	if !enabled && s.allowSuperuserCommands {
		s.allowSuperuserCommands = false
		s.logger.Info("Superuser command allowance cleared with elevated mode")
	}
}

// SetSuperuserCommandsAllowed toggles the explicit superuser opt-in. The
// allowance cannot be granted while elevated mode is off.
func (s *Store) SetSuperuserCommandsAllowed(allowed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if allowed && !s.elevatedMode {
		s.logger.Warn("Refusing superuser allowance without elevated mode")
		return
	}
	s.allowSuperuserCommands = allowed
}
