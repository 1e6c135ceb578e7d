package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" || cfg.DBPath != "data/treasure.db" {
		t.Errorf("addr %q db %q", cfg.HTTPAddr, cfg.DBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v", cfg.LogLevel)
	}
	if cfg.TickInterval != time.Second || cfg.RoundTTL != 30*time.Minute {
		t.Errorf("tick %v ttl %v", cfg.TickInterval, cfg.RoundTTL)
	}
	if cfg.LeaderboardLimit != 50 || cfg.AnonymousName != "Anonymous Explorer" {
		t.Errorf("limit %d anonymous %q", cfg.LeaderboardLimit, cfg.AnonymousName)
	}
	if cfg.RedisURL != "" {
		t.Errorf("redis url = %q, want empty", cfg.RedisURL)
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "DB_PATH=/tmp/hunt.db\nLOG_LEVEL=DEBUG\nTICK_INTERVAL=250ms\nHTTP_ADDR=:7000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"DB_PATH", "LOG_LEVEL", "TICK_INTERVAL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("HTTP_ADDR", ":9000")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/hunt.db" || cfg.LogLevel != slog.LevelDebug || cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("environment did not win over .env: %q", cfg.HTTPAddr)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"TICK_INTERVAL", "0s", "TICK_INTERVAL"},
		{"SWEEP_INTERVAL", "-1s", "SWEEP_INTERVAL"},
		{"LEADERBOARD_LIMIT", "0", "LEADERBOARD_LIMIT"},
		{"ROUND_TTL", "soon", "parsing environment"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
