package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Mongo.Database != "servicecrm" || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("unexpected store defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if cfg.Recompute.Workers != 8 || cfg.Recompute.ScanInterval != 15*time.Minute {
		t.Errorf("unexpected recompute defaults: %+v", cfg.Recompute)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                 "production",
		"JWT_SECRET":          "s3cret",
		"TOKEN_TTL":           "2h",
		"RECOMPUTE_WORKERS":   "2",
		"ALERT_SCAN_INTERVAL": "1m",
		"SEED_ADMIN_EMAIL":    "admin@example.com",
		"REDIS_PASSWORD":      "hunter2",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.JWTSecret != "s3cret" || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.Recompute.Workers != 2 || cfg.Recompute.ScanInterval != time.Minute {
		t.Errorf("unexpected recompute config: %+v", cfg.Recompute)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Seed.AdminEmail != "admin@example.com" {
		t.Errorf("unexpected seed config: %+v", cfg.Seed)
	}
}

func TestLoad_RequiresSecretOutsideDevelopment(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	if err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"TOKEN_TTL": "0s"}))
	if err == nil {
		t.Fatal("expected an error for a zero token ttl")
	}
}
