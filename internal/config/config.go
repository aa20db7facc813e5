package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment once at startup. A .env file, if
// present, is loaded into the environment before this runs.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"casino.db"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	StartBonus int64 `env:"START_BONUS" envDefault:"500"`
	DailyBonus int64 `env:"DAILY_BONUS" envDefault:"250"`
	MinBet     int64 `env:"MIN_BET" envDefault:"10"`
	MaxBet     int64 `env:"MAX_BET" envDefault:"10000"`

	RateLimitPlays int           `env:"RATE_LIMIT_PLAYS" envDefault:"30"`
	StaleRoundAge  time.Duration `env:"STALE_ROUND_AGE" envDefault:"10m"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.MinBet <= 0 || cfg.MaxBet < cfg.MinBet {
		return nil, fmt.Errorf("bet limits are inconsistent: min %d, max %d", cfg.MinBet, cfg.MaxBet)
	}
	return &cfg, nil
}
