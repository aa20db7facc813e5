package config_test

import (
	"testing"
	"time"

	"fantasy-casino-backend/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.DatabasePath != "casino.db" {
		t.Errorf("database path = %q, want casino.db", cfg.DatabasePath)
	}
	if cfg.StartBonus != 500 || cfg.DailyBonus != 250 {
		t.Errorf("bonuses = %d/%d, want 500/250", cfg.StartBonus, cfg.DailyBonus)
	}
	if cfg.MinBet != 10 || cfg.MaxBet != 10000 {
		t.Errorf("bet limits = %d/%d, want 10/10000", cfg.MinBet, cfg.MaxBet)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("token ttl = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.StaleRoundAge != 10*time.Minute {
		t.Errorf("stale round age = %v, want 10m", cfg.StaleRoundAge)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("MIN_BET", "50")
	t.Setenv("MAX_BET", "5000")
	t.Setenv("STALE_ROUND_AGE", "30m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Port)
	}
	if cfg.MinBet != 50 || cfg.MaxBet != 5000 {
		t.Errorf("bet limits = %d/%d, want 50/5000", cfg.MinBet, cfg.MaxBet)
	}
	if cfg.StaleRoundAge != 30*time.Minute {
		t.Errorf("stale round age = %v, want 30m", cfg.StaleRoundAge)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("empty JWT secret accepted")
	}
}

func TestLoadRejectsBadLimits(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MIN_BET", "100")
	t.Setenv("MAX_BET", "10")

	if _, err := config.Load(); err == nil {
		t.Fatal("inverted bet limits accepted")
	}
}
