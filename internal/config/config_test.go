package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("LoadWith failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.App.TokenTTL != 24*time.Hour {
		t.Errorf("expected token ttl 24h, got %s", cfg.App.TokenTTL)
	}
	if cfg.Superuser.Username != "admin" || cfg.Superuser.Email != "admin@example.com" {
		t.Errorf("unexpected superuser defaults: %+v", cfg.Superuser)
	}
	if cfg.Media.Enabled() {
		t.Error("media should be disabled without a bucket")
	}

	dsn := cfg.GetDSN()
	if !strings.Contains(dsn, "dbname=findhome") || !strings.Contains(dsn, "host=localhost") {
		t.Errorf("unexpected dsn %q", dsn)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestDatabaseURLOverridesParts(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "secret",
		"DATABASE_URL": "postgres://u:p@db:5432/homes",
		"DB_HOST":      "ignored",
		"CORS_ORIGINS": "https://a.example,https://b.example",
		"MEDIA_BUCKET": "photos",
	}))
	if err != nil {
		t.Fatalf("LoadWith failed: %v", err)
	}

	if got := cfg.GetDSN(); got != "postgres://u:p@db:5432/homes" {
		t.Errorf("expected DATABASE_URL to win, got %q", got)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.Media.Enabled() {
		t.Error("media should be enabled with a bucket")
	}
}
