package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath         string        `env:"DB_PATH" envDefault:"data/rideathon.db"`
	LogLevel       slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	AdminToken     string        `env:"ADMIN_TOKEN"`
	ForfeitPenalty float64       `env:"FORFEIT_PENALTY" envDefault:"5"`
	ScoreInterval  time.Duration `env:"SCORE_INTERVAL" envDefault:"1m"`
	EventFile      string        `env:"EVENT_FILE"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.ForfeitPenalty < 0 {
		return nil, fmt.Errorf("FORFEIT_PENALTY must not be negative, got %v", cfg.ForfeitPenalty)
	}
	if cfg.ScoreInterval <= 0 {
		return nil, fmt.Errorf("SCORE_INTERVAL must be positive, got %v", cfg.ScoreInterval)
	}
	return &cfg, nil
}
