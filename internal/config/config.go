package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvRelayURL  = "BATTLESHIP_RELAY_URL"
	EnvPlayer    = "BATTLESHIP_PLAYER"
	EnvRelayAddr = "BATTLESHIP_RELAY_ADDR"
	EnvRelayPort = "BATTLESHIP_RELAY_PORT"
	EnvRedisAddr = "BATTLESHIP_REDIS_ADDR"
)

// Config is the combined client and relay configuration.
type Config struct {
	Client    ClientConfig    `yaml:"client"`
	Game      GameConfig      `yaml:"game"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Relay     RelayConfig     `yaml:"relay"`
}

// ClientConfig configures the player's client.
type ClientConfig struct {
	RelayURL string `yaml:"relay_url"`
	Player   string `yaml:"player"`
	LogDir   string `yaml:"log_dir"`
	Sound    bool   `yaml:"sound"`
	SoundDir string `yaml:"sound_dir"`
}

// GameConfig holds the rules shared by both players.
type GameConfig struct {
	BoardSize   int            `yaml:"board_size"`
	TurnTimeout int            `yaml:"turn_timeout"` // seconds
	Fleet       map[string]int `yaml:"fleet"`        // ship type -> allowed count
	Munitions   map[string]int `yaml:"munitions"`    // special type -> count
}

// TurnTimeoutDuration returns the per-turn countdown.
func (c *GameConfig) TurnTimeoutDuration() time.Duration {
	return time.Duration(c.TurnTimeout) * time.Second
}

// ReconnectConfig is the transport reconnect policy.
type ReconnectConfig struct {
	MaxAttempts  int `yaml:"max_attempts"`
	BaseInterval int `yaml:"base_interval"` // milliseconds
	MaxInterval  int `yaml:"max_interval"`  // milliseconds
}

// BaseIntervalDuration returns the first backoff interval.
func (c *ReconnectConfig) BaseIntervalDuration() time.Duration {
	return time.Duration(c.BaseInterval) * time.Millisecond
}

// MaxIntervalDuration returns the backoff cap.
func (c *ReconnectConfig) MaxIntervalDuration() time.Duration {
	return time.Duration(c.MaxInterval) * time.Millisecond
}

// RelayConfig configures the relay server.
type RelayConfig struct {
	Host              string      `yaml:"host"`
	Port              int         `yaml:"port"`
	MaxConnections    int         `yaml:"max_connections"`
	MessagesPerSecond int         `yaml:"messages_per_second"` // per connection
	AllowedOrigins    []string    `yaml:"allowed_origins"`     // "*" allows any
	Redis             RedisConfig `yaml:"redis"`
}

// RedisConfig locates the room store. An empty Addr keeps rooms in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Load reads the yaml file at path, fills defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	cfg.fillDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// LoadEnvFile loads a .env file into the process environment. A missing file
// is ignored.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			RelayURL: "ws://localhost:8080/ws",
			Sound:    true,
			SoundDir: "assets/sounds",
		},
		Game: GameConfig{
			BoardSize:   10,
			TurnTimeout: 60,
			Fleet: map[string]int{
				"carrier":    1,
				"battleship": 1,
				"cruiser":    1,
				"submarine":  1,
				"destroyer":  1,
			},
			Munitions: map[string]int{
				"area-a": 1,
				"area-b": 2,
			},
		},
		Reconnect: ReconnectConfig{
			MaxAttempts:  5,
			BaseInterval: 1000,
			MaxInterval:  30000,
		},
		Relay: RelayConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			MaxConnections:    1000,
			MessagesPerSecond: 20,
			AllowedOrigins:    []string{"*"},
		},
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Client.RelayURL == "" {
		c.Client.RelayURL = def.Client.RelayURL
	}
	if c.Client.SoundDir == "" {
		c.Client.SoundDir = def.Client.SoundDir
	}
	if c.Game.BoardSize <= 0 {
		c.Game.BoardSize = def.Game.BoardSize
	}
	if c.Game.TurnTimeout <= 0 {
		c.Game.TurnTimeout = def.Game.TurnTimeout
	}
	if len(c.Game.Fleet) == 0 {
		c.Game.Fleet = def.Game.Fleet
	}
	if c.Game.Munitions == nil {
		c.Game.Munitions = def.Game.Munitions
	}
	if c.Reconnect.MaxAttempts <= 0 {
		c.Reconnect.MaxAttempts = def.Reconnect.MaxAttempts
	}
	if c.Reconnect.BaseInterval <= 0 {
		c.Reconnect.BaseInterval = def.Reconnect.BaseInterval
	}
	if c.Reconnect.MaxInterval < c.Reconnect.BaseInterval {
		c.Reconnect.MaxInterval = max(def.Reconnect.MaxInterval, c.Reconnect.BaseInterval)
	}
	if c.Relay.Host == "" {
		c.Relay.Host = def.Relay.Host
	}
	if c.Relay.Port == 0 {
		c.Relay.Port = def.Relay.Port
	}
	if c.Relay.MaxConnections <= 0 {
		c.Relay.MaxConnections = def.Relay.MaxConnections
	}
	if c.Relay.MessagesPerSecond <= 0 {
		c.Relay.MessagesPerSecond = def.Relay.MessagesPerSecond
	}
	if len(c.Relay.AllowedOrigins) == 0 {
		c.Relay.AllowedOrigins = def.Relay.AllowedOrigins
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRelayURL); v != "" {
		c.Client.RelayURL = v
	}
	if v := os.Getenv(EnvPlayer); v != "" {
		c.Client.Player = v
	}
	if v := os.Getenv(EnvRelayAddr); v != "" {
		c.Relay.Host = v
	}
	if v := os.Getenv(EnvRelayPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Relay.Port = port
		}
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Relay.Redis.Addr = v
	}
}
