package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Network  NetworkConfig  `toml:"network"`
	Auth     AuthConfig     `toml:"auth"`
	Match    MatchConfig    `toml:"match"`
	AI       AIConfig       `toml:"ai"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type DatabaseConfig struct {
	URI            string        `toml:"uri"`
	Name           string        `toml:"name"`
	ConnectTimeout time.Duration `toml:"connect_timeout"`
	QueryTimeout   time.Duration `toml:"query_timeout"`
}

type NetworkConfig struct {
	BindAddress       string        `toml:"bind_address"`
	TickRate          time.Duration `toml:"tick_rate"`
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	MaxPacketsPerTick int           `toml:"max_packets_per_tick"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	IdleTimeout       time.Duration `toml:"idle_timeout"`
}

type AuthConfig struct {
	BcryptCost  int           `toml:"bcrypt_cost"`
	TokenSecret string        `toml:"token_secret"`
	TokenTTL    time.Duration `toml:"token_ttl"`
}

type MatchConfig struct {
	RatingWindow int           `toml:"rating_window"` // 0 = unbounded (pure FIFO)
	ChallengeTTL time.Duration `toml:"challenge_ttl"`
}

type AIConfig struct {
	Workers int `toml:"workers"` // max concurrent engine searches
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the TOML config at path, applying defaults for anything not set.
// A missing file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Server.StartTime = time.Now().Unix()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "gambitd",
		},
		Database: DatabaseConfig{
			URI:            "mongodb://localhost:27017",
			Name:           "gambitd",
			ConnectTimeout: 10 * time.Second,
			QueryTimeout:   3 * time.Second,
		},
		Network: NetworkConfig{
			BindAddress:       "0.0.0.0:8765",
			TickRate:          50 * time.Millisecond,
			InQueueSize:       64,
			OutQueueSize:      128,
			MaxPacketsPerTick: 16,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       5 * time.Minute,
		},
		Auth: AuthConfig{
			BcryptCost:  12,
			TokenSecret: "change-me-in-production",
			TokenTTL:    24 * time.Hour,
		},
		Match: MatchConfig{
			RatingWindow: 0,
			ChallengeTTL: 60 * time.Second,
		},
		AI: AIConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
