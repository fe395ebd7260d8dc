package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string     `env:"HTTP_ADDR" envDefault:":4000"`
	DBPath         string     `env:"DB_PATH" envDefault:"data/cluehunt.db"`
	LogLevel       slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir         string     `env:"SPA_DIR" envDefault:"../web/dist"`
	AssetsDir      string     `env:"ASSETS_DIR" envDefault:"public"`
	RedisURL       string     `env:"REDIS_URL"`
	AdminTokenHash string     `env:"ADMIN_TOKEN_HASH"`
	CORSOrigins    []string   `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	PublicURL      string     `env:"PUBLIC_URL"`

	LeaderboardLimit int    `env:"LEADERBOARD_LIMIT" envDefault:"10"`
	QuestionsFile    string `env:"QUESTIONS_FILE"`

	Clue ClueConfig
}

// ClueConfig controls the clue image canvas.
type ClueConfig struct {
	Digits      []string `env:"SECRET_DIGITS" envDefault:"1,1,1,0,2,5" envSeparator:","`
	Width       int      `env:"CLUE_WIDTH" envDefault:"800"`
	Height      int      `env:"CLUE_HEIGHT" envDefault:"600"`
	Margin      int      `env:"CLUE_MARGIN" envDefault:"50"`
	FontSize    float64  `env:"CLUE_FONT_SIZE" envDefault:"48"`
	MaxMapIndex int      `env:"MAX_MAP_INDEX" envDefault:"6"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.LeaderboardLimit < 1 {
		errs = append(errs, fmt.Errorf("LEADERBOARD_LIMIT must be positive, got %d", c.LeaderboardLimit))
	}
	if len(c.Clue.Digits) == 0 {
		errs = append(errs, errors.New("SECRET_DIGITS must not be empty"))
	}
	if c.Clue.Width <= 0 || c.Clue.Height <= 0 {
		errs = append(errs, fmt.Errorf("clue canvas must be positive, got %dx%d", c.Clue.Width, c.Clue.Height))
	}
	if c.Clue.Margin < 0 || 2*c.Clue.Margin >= c.Clue.Width || 2*c.Clue.Margin >= c.Clue.Height {
		errs = append(errs, fmt.Errorf("CLUE_MARGIN %d leaves no room on a %dx%d canvas", c.Clue.Margin, c.Clue.Width, c.Clue.Height))
	}
	if c.Clue.FontSize <= 0 {
		errs = append(errs, errors.New("CLUE_FONT_SIZE must be positive"))
	}
	if c.Clue.MaxMapIndex < 1 {
		errs = append(errs, errors.New("MAX_MAP_INDEX must be at least 1"))
	}
	return errors.Join(errs...)
}
