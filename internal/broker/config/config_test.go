package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoba/go-droid-broker/internal/common"
)

func TestLoader_Load(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := NewLoader().Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultListenAddr, cfg.Listen)
		assert.Equal(t, DefaultSocketPath, cfg.Socket)
		assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
		assert.False(t, cfg.Security.ElevatedMode)
	})

	t.Run("full config", func(t *testing.T) {
		fs := common.NewMockFileSystem()
		fs.AddFile("/etc/broker.toml", &common.MockFileEntry{Data: []byte(`
listen = "127.0.0.1:9000"
socket = "/run/shell.sock"
log_level = "debug"

[security]
elevated_mode = true
allow_superuser_commands = true
`)})

		cfg, err := NewLoaderWithFS(fs).Load("/etc/broker.toml")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
		assert.Equal(t, "/run/shell.sock", cfg.Socket)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.Security.ElevatedMode)
		assert.True(t, cfg.Security.AllowSuperuserCommands)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		fs := common.NewMockFileSystem()
		fs.AddFile("/etc/broker.toml", &common.MockFileEntry{Data: []byte(`
[security]
elevated_mode = true
`)})

		cfg, err := NewLoaderWithFS(fs).Load("/etc/broker.toml")
		require.NoError(t, err)
		assert.Equal(t, DefaultListenAddr, cfg.Listen)
		assert.True(t, cfg.Security.ElevatedMode)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoaderWithFS(common.NewMockFileSystem()).Load("/nope.toml")
		assert.ErrorIs(t, err, ErrInvalidConfigPath)
	})

	t.Run("malformed toml", func(t *testing.T) {
		fs := common.NewMockFileSystem()
		fs.AddFile("/bad.toml", &common.MockFileEntry{Data: []byte("listen = [broken")})

		_, err := NewLoaderWithFS(fs).Load("/bad.toml")
		assert.Error(t, err)
	})
}

func TestStore_TwoFlagInvariant(t *testing.T) {
	t.Run("disabling elevated mode clears superuser allowance", func(t *testing.T) {
		s := NewStore(SecurityConfig{ElevatedMode: true, AllowSuperuserCommands: true}, nil)
		require.True(t, s.SuperuserCommandsAllowed())

		s.SetElevatedMode(false)
		assert.False(t, s.ElevatedModeEnabled())
		assert.False(t, s.SuperuserCommandsAllowed(),
			"superuser allowance must read back false after elevated mode is off")
	})

	t.Run("superuser allowance requires elevated mode", func(t *testing.T) {
		s := NewStore(SecurityConfig{}, nil)
		s.SetSuperuserCommandsAllowed(true)
		assert.False(t, s.SuperuserCommandsAllowed())

		s.SetElevatedMode(true)
		s.SetSuperuserCommandsAllowed(true)
		assert.True(t, s.SuperuserCommandsAllowed())
	})

	t.Run("invariant enforced at construction", func(t *testing.T) {
		s := NewStore(SecurityConfig{ElevatedMode: false, AllowSuperuserCommands: true}, nil)
		assert.False(t, s.SuperuserCommandsAllowed())
	})
}
