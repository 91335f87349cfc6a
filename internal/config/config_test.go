package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	content := `
client:
  relay_url: "ws://relay.example:9000/ws"
  player: "alice"

game:
  board_size: 8
  turn_timeout: 30
  fleet:
    carrier: 0
    destroyer: 2
  munitions:
    area-a: 3

reconnect:
  max_attempts: 3
  base_interval: 500
  max_interval: 4000

relay:
  host: "127.0.0.1"
  port: 9000
  redis:
    addr: "redis:6379"
    password: "secret"
    db: 1
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "ws://relay.example:9000/ws", cfg.Client.RelayURL)
	assert.Equal(t, "alice", cfg.Client.Player)
	assert.Equal(t, 8, cfg.Game.BoardSize)
	assert.Equal(t, 30*time.Second, cfg.Game.TurnTimeoutDuration())
	assert.Equal(t, 0, cfg.Game.Fleet["carrier"])
	assert.Equal(t, 2, cfg.Game.Fleet["destroyer"])
	assert.Equal(t, 3, cfg.Game.Munitions["area-a"])
	assert.Equal(t, 3, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Reconnect.BaseIntervalDuration())
	assert.Equal(t, 4*time.Second, cfg.Reconnect.MaxIntervalDuration())
	assert.Equal(t, "127.0.0.1", cfg.Relay.Host)
	assert.Equal(t, 9000, cfg.Relay.Port)
	assert.Equal(t, "redis:6379", cfg.Relay.Redis.Addr)
	assert.Equal(t, "secret", cfg.Relay.Redis.Password)
	assert.Equal(t, 1, cfg.Relay.Redis.DB)
}

func TestLoad_FileNotFoundUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default().Game, cfg.Game)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	content := `
game:
  board_size: -1
reconnect:
  base_interval: 60000
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Client.RelayURL, cfg.Client.RelayURL)
	assert.True(t, cfg.Client.Sound)
	assert.Equal(t, "assets/sounds", cfg.Client.SoundDir)
	assert.Equal(t, def.Game.BoardSize, cfg.Game.BoardSize)
	assert.Equal(t, def.Game.TurnTimeout, cfg.Game.TurnTimeout)
	assert.Equal(t, def.Game.Fleet, cfg.Game.Fleet)
	assert.Equal(t, def.Reconnect.MaxAttempts, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, 60000, cfg.Reconnect.MaxInterval, "the cap never drops below the base interval")
	assert.Equal(t, def.Relay.Port, cfg.Relay.Port)
	assert.Equal(t, def.Relay.MaxConnections, cfg.Relay.MaxConnections)
	assert.Equal(t, def.Relay.MessagesPerSecond, cfg.Relay.MessagesPerSecond)
	assert.Equal(t, []string{"*"}, cfg.Relay.AllowedOrigins)
	assert.Empty(t, cfg.Relay.Redis.Addr)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, 10, cfg.Game.BoardSize)
	assert.Equal(t, 60*time.Second, cfg.Game.TurnTimeoutDuration())
	assert.Len(t, cfg.Game.Fleet, 5)
	assert.Equal(t, 5, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Reconnect.BaseIntervalDuration())

	// callers may mutate their copy
	cfg.Game.Fleet["carrier"] = 9
	assert.Equal(t, 1, Default().Game.Fleet["carrier"])
}

func TestLoadFromEnv(t *testing.T) {
	// Not parallel because it modifies environment variables
	t.Setenv(EnvRelayURL, "ws://env-relay/ws")
	t.Setenv(EnvPlayer, "bob")
	t.Setenv(EnvRelayAddr, "env-host")
	t.Setenv(EnvRelayPort, "9999")
	t.Setenv(EnvRedisAddr, "env-redis:6380")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "ws://env-relay/ws", cfg.Client.RelayURL)
	assert.Equal(t, "bob", cfg.Client.Player)
	assert.Equal(t, "env-host", cfg.Relay.Host)
	assert.Equal(t, 9999, cfg.Relay.Port)
	assert.Equal(t, "env-redis:6380", cfg.Relay.Redis.Addr)
}

func TestLoadFromEnv_BadPortIgnored(t *testing.T) {
	t.Setenv(EnvRelayPort, "not-a-port")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, Default().Relay.Port, cfg.Relay.Port)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvPlayer+"=carol\n"), 0o600))
	t.Setenv(EnvPlayer, "")
	require.NoError(t, os.Unsetenv(EnvPlayer))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "carol", os.Getenv(EnvPlayer))

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
