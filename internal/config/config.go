// Package config loads the settlersim configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/vgerber/settler-island-server/internal/game"
)

// Config controls a headless simulation run.
type Config struct {
	DBPath      string `env:"SETTLER_DB_PATH"      envDefault:"data/settler.db"`
	Seed        int64  `env:"SETTLER_SEED"         envDefault:"0"` // 0 draws a random seed
	Players     int    `env:"SETTLER_PLAYERS"      envDefault:"3"`
	BoardSize   int    `env:"SETTLER_BOARD_SIZE"   envDefault:"3"`
	MaxActions  int    `env:"SETTLER_MAX_ACTIONS"  envDefault:"2000"`
	TargetScore int    `env:"SETTLER_TARGET_SCORE" envDefault:"10"`
	LogLevel    string `env:"SETTLER_LOG_LEVEL"    envDefault:"info"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges the game and store rely on.
func (c Config) Validate() error {
	switch {
	case c.DBPath == "":
		return errors.New("SETTLER_DB_PATH must not be empty")
	case c.Players < game.MinPlayers || c.Players > game.MaxPlayers:
		return fmt.Errorf("SETTLER_PLAYERS %d outside %d..%d", c.Players, game.MinPlayers, game.MaxPlayers)
	case c.BoardSize < 2:
		return fmt.Errorf("SETTLER_BOARD_SIZE %d too small, need at least 2", c.BoardSize)
	case c.MaxActions <= 0:
		return fmt.Errorf("SETTLER_MAX_ACTIONS must be positive, got %d", c.MaxActions)
	case c.TargetScore <= 0:
		return fmt.Errorf("SETTLER_TARGET_SCORE must be positive, got %d", c.TargetScore)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("SETTLER_LOG_LEVEL: %w", err)
	}
	return level, nil
}
