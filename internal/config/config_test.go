package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL_MINUTES", "")
	cfg := Load()
	if cfg.AppEnv != "development" {
		t.Fatalf("expected development, got %s", cfg.AppEnv)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected 8080, got %s", cfg.Port)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %s", cfg.TokenTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("TOKEN_TTL_MINUTES", "15")
	cfg := Load()
	if cfg.Port != "9999" {
		t.Fatalf("expected 9999, got %s", cfg.Port)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m token ttl, got %s", cfg.TokenTTL)
	}
}

func TestLoadIgnoresMalformedTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL_MINUTES", "later")
	cfg := Load()
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected fallback ttl, got %s", cfg.TokenTTL)
	}
}
