package config

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"BOT_TOKEN": "token",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Prefix != "!" {
		t.Errorf("prefix = %q, want !", cfg.Prefix)
	}
	if cfg.CallTimeout != 10*time.Second {
		t.Errorf("call timeout = %s", cfg.CallTimeout)
	}
	if cfg.IdleTimeout != 3*time.Minute {
		t.Errorf("idle timeout = %s", cfg.IdleTimeout)
	}
	if got := cfg.Lavalink.Address(); got != "localhost:2333" {
		t.Errorf("lavalink address = %q", got)
	}
	if cfg.Lavalink.Password != "youshallnotpass" {
		t.Errorf("lavalink password = %q", cfg.Lavalink.Password)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("log level = %v", cfg.SlogLevel())
	}
}

func TestLoadFromLegacyToken(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"DISCORD_TOKEN": "legacy",
		"LAVALINK_HOST": "lavalink",
		"LAVALINK_PORT": "443",
		"LOG_LEVEL":     "debug",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token != "legacy" {
		t.Errorf("token = %q", cfg.Token)
	}
	if got := cfg.Lavalink.Address(); got != "lavalink:443" {
		t.Errorf("lavalink address = %q", got)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.SlogLevel())
	}
}

func TestLoadFromErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing token", env: map[string]string{}},
		{name: "bad port", env: map[string]string{"BOT_TOKEN": "t", "LAVALINK_PORT": "70000"}},
		{name: "bad timeout", env: map[string]string{"BOT_TOKEN": "t", "CALL_TIMEOUT": "0s"}},
		{name: "unparsable duration", env: map[string]string{"BOT_TOKEN": "t", "IDLE_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(tt.env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(nil))
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("err = %v, want ErrMissingToken", err)
	}
}
