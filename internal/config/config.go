package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// Config is loaded from environment variables. Precedence: explicit env var >
// .env file (loaded by main via godotenv) > default.
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	DatabaseDSN   string `env:"DATABASE_DSN" envDefault:"file:zello.db?_busy_timeout=5000"`
	Env           string `env:"APP_ENV" envDefault:"development"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"devsessionsecret"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Migrations    bool   `env:"MIGRATIONS" envDefault:"false"`
	Seed          bool   `env:"DB_SEED" envDefault:"false"`
}

// Load parses the environment into a Config. Parse errors fall back to
// defaults with a warning; a bad env var should not take the service down.
func Load() Config {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Warn("config: falling back to defaults")
	}
	return cfg
}

// LogrusLevel maps the configured level string onto a logrus level.
func (c Config) LogrusLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
