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
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.TokenTTL != 24*time.Hour || cfg.EventWorkers != 8 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Redis.Prefix != "lyvo" || cfg.Mongo.Database != "lyvo" {
		t.Fatalf("unexpected store defaults: %+v %+v", cfg.Redis, cfg.Mongo)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":          "9000",
		"TOKEN_TTL":     "90m",
		"COOKIE_SECURE": "true",
		"REDIS_DB":      "2",
		"SPA_DIR":       "/srv/app",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" || cfg.TokenTTL != 90*time.Minute || !cfg.CookieSecure || cfg.Redis.DB != 2 || cfg.SPADir != "/srv/app" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	if err == nil {
		t.Fatalf("expected an error without JWT_SECRET")
	}
}
