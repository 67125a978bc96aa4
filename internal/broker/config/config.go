// Package config loads the broker configuration from TOML and holds the
// runtime settings store consumed by the security gate.
package config

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/mkoba/go-droid-broker/internal/common"
)

// Error definitions for the config package
var (
	// ErrInvalidConfigPath is returned when the config file path is invalid
	ErrInvalidConfigPath = errors.New("invalid config file path")
)

// Defaults applied when fields are absent from the file.
const (
	DefaultListenAddr = "127.0.0.1:8350"
	DefaultSocketPath = "/data/local/tmp/droidbroker.sock"
	DefaultLogLevel   = "info"
)

// SecurityConfig holds the two flags gating superuser command execution.
type SecurityConfig struct {
	ElevatedMode           bool `toml:"elevated_mode"`
	AllowSuperuserCommands bool `toml:"allow_superuser_commands"`
}

// Config is the broker's file configuration.
type Config struct {
	// Listen is the control API address. The API is local-only by design;
	// keep it on a loopback address.
	Listen string `toml:"listen"`
	// Socket is the shell-service socket path the channel binds to.
	Socket string `toml:"socket"`

	LogLevel string `toml:"log_level"`
	LogDir   string `toml:"log_dir"`

	Security SecurityConfig `toml:"security"`
}

// Loader handles loading and validating configurations
type Loader struct {
	fs common.FileSystem
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return NewLoaderWithFS(common.NewDefaultFileSystem())
}

// NewLoaderWithFS creates a new config loader with a custom FileSystem
func NewLoaderWithFS(fs common.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads and validates the configuration at path. An empty path yields
// the defaults.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := &Config{
		Listen:   DefaultListenAddr,
		Socket:   DefaultSocketPath,
		LogLevel: DefaultLogLevel,
	}
	if path == "" {
		return cfg, nil
	}

	content, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfigPath, path, err)
	}
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Listen == "" {
		cfg.Listen = DefaultListenAddr
	}
	if cfg.Socket == "" {
		cfg.Socket = DefaultSocketPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg, nil
}
