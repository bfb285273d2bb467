package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("default port: %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("default env: %s", cfg.Env)
	}
	if cfg.Migrations || cfg.Seed {
		t.Fatal("migrations/seed must default off")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_SEED", "true")
	t.Setenv("LOG_LEVEL", "debug")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("port override: %s", cfg.Port)
	}
	if !cfg.Seed {
		t.Fatal("seed override not applied")
	}
	if cfg.LogrusLevel() != logrus.DebugLevel {
		t.Fatalf("level: %v", cfg.LogrusLevel())
	}
}

func TestLogrusLevelFallback(t *testing.T) {
	cfg := Config{LogLevel: "shouting"}
	if cfg.LogrusLevel() != logrus.InfoLevel {
		t.Fatalf("invalid level must fall back to info, got %v", cfg.LogrusLevel())
	}
}
