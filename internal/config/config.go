package config

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
)

var ErrMissingToken = errors.New("BOT_TOKEN is not set")

type Config struct {
	Token       string `env:"BOT_TOKEN"`
	LegacyToken string `env:"DISCORD_TOKEN"`

	Lavalink Lavalink

	Prefix         string        `env:"COMMAND_PREFIX, default=!"`
	CallTimeout    time.Duration `env:"CALL_TIMEOUT, default=10s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT, default=3m"`
	SearchCacheTTL time.Duration `env:"SEARCH_CACHE_TTL, default=5m"`

	// CommandRate is the number of commands per second a single user may issue.
	CommandRate  float64 `env:"COMMAND_RATE, default=1"`
	CommandBurst int     `env:"COMMAND_BURST, default=3"`

	LogLevel string `env:"LOG_LEVEL, default=info"`
}

type Lavalink struct {
	Name     string `env:"LAVALINK_NAME, default=main"`
	Host     string `env:"LAVALINK_HOST, default=localhost"`
	Port     int    `env:"LAVALINK_PORT, default=2333"`
	Password string `env:"LAVALINK_PASSWORD, default=youshallnotpass"`
	Secure   bool   `env:"LAVALINK_SECURE, default=false"`
}

func (l Lavalink) Address() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

// Load reads an optional .env file and then decodes the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to process environment")
	}

	if cfg.Token == "" {
		cfg.Token = cfg.LegacyToken
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	if strings.TrimSpace(c.Prefix) == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}
	if c.CallTimeout <= 0 {
		return errors.Errorf("CALL_TIMEOUT must be positive, got %s", c.CallTimeout)
	}
	if c.Lavalink.Port <= 0 || c.Lavalink.Port > 65535 {
		return errors.Errorf("LAVALINK_PORT out of range: %d", c.Lavalink.Port)
	}
	if c.CommandBurst < 1 {
		c.CommandBurst = 1
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
