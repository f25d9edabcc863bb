package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.ForfeitPenalty != 5 {
		t.Errorf("ForfeitPenalty = %v, want 5", cfg.ForfeitPenalty)
	}
	if cfg.ScoreInterval != time.Minute {
		t.Errorf("ScoreInterval = %v, want 1m", cfg.ScoreInterval)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FORFEIT_PENALTY", "2.5")
	t.Setenv("SCORE_INTERVAL", "30s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ADMIN_TOKEN", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ForfeitPenalty != 2.5 {
		t.Errorf("ForfeitPenalty = %v, want 2.5", cfg.ForfeitPenalty)
	}
	if cfg.ScoreInterval != 30*time.Second {
		t.Errorf("ScoreInterval = %v, want 30s", cfg.ScoreInterval)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if cfg.AdminToken != "s3cret" {
		t.Errorf("AdminToken = %q", cfg.AdminToken)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"negative penalty", "FORFEIT_PENALTY", "-1"},
		{"zero interval", "SCORE_INTERVAL", "0s"},
		{"unparsable interval", "SCORE_INTERVAL", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
