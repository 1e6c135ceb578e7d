package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath       string     `env:"DB_PATH" envDefault:"data/treasure.db"`
	LogLevel     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir       string     `env:"SPA_DIR" envDefault:"../web/dist"`
	RedisURL     string     `env:"REDIS_URL"`
	SceneCatalog string     `env:"SCENE_CATALOG"`

	TickInterval  time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	RoundTTL      time.Duration `env:"ROUND_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`

	LeaderboardLimit    int           `env:"LEADERBOARD_LIMIT" envDefault:"50"`
	LeaderboardCacheTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"30s"`
	AnonymousName       string        `env:"ANONYMOUS_NAME" envDefault:"Anonymous Explorer"`
}

// Load reads the configuration from the environment, after loading .env from
// the working directory if there is one.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. Variables already set in the
// environment win over the file.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	if cfg.LeaderboardLimit <= 0 {
		return nil, fmt.Errorf("LEADERBOARD_LIMIT must be positive, got %d", cfg.LeaderboardLimit)
	}
	return &cfg, nil
}
