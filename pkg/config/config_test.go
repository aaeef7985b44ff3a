package config

import (
	"testing"
	"time"

	"github.com/angelmondragon/stallpos/pkg/enums"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.App.Port)
	}
	if cfg.Store.Backend != enums.StoreBackendFile {
		t.Fatalf("expected file backend, got %q", cfg.Store.Backend)
	}
	if cfg.Store.OrderFlow != enums.OrderFlowFull {
		t.Fatalf("expected full flow, got %q", cfg.Store.OrderFlow)
	}
	if cfg.Idempotency.TTL != 24*time.Hour {
		t.Fatalf("expected idempotency ttl 24h, got %v", cfg.Idempotency.TTL)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Redis.Namespace != "stallpos" || cfg.DB.SlowQuery != 200*time.Millisecond {
		t.Fatalf("unexpected storage defaults namespace=%q slow=%v", cfg.Redis.Namespace, cfg.DB.SlowQuery)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvOrderFlow, "compact")
	t.Setenv(EnvStoreBackend, "redis")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvCORSOrigins, "http://pos.local,http://kds.local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected prod env, got %q", cfg.App.Env)
	}
	if cfg.Store.OrderFlow != enums.OrderFlowCompact {
		t.Fatalf("expected compact flow, got %q", cfg.Store.OrderFlow)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected two cors origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":      {EnvStoreBackend: "s3"},
		"unknown flow":         {EnvOrderFlow: "express"},
		"redis without addr":   {EnvStoreBackend: "redis"},
		"postgres without dsn": {EnvStoreBackend: "postgres"},
		"empty file path":      {EnvStoreFile: " "},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected Load() to fail")
			}
		})
	}
}

func TestLoad_SQLiteDefaultsDSN(t *testing.T) {
	t.Setenv(EnvStoreBackend, "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DB.DSN != DefaultSQLiteDSN {
		t.Fatalf("expected default sqlite dsn, got %q", cfg.DB.DSN)
	}
}

func TestLoadDisplay(t *testing.T) {
	t.Setenv(EnvDisplayKind, "call")
	t.Setenv(EnvDisplayReadyLimit, "6")

	cfg, err := LoadDisplay()
	if err != nil {
		t.Fatalf("LoadDisplay() returned unexpected error: %v", err)
	}
	if cfg.Kind != enums.DisplayKindCall {
		t.Fatalf("expected call display, got %q", cfg.Kind)
	}
	if cfg.ReadyLimit != 6 {
		t.Fatalf("expected ready limit 6, got %d", cfg.ReadyLimit)
	}
	if cfg.PollInterval != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s poll interval, got %v", cfg.PollInterval)
	}

	t.Setenv(EnvDisplayKind, "tv")
	if _, err := LoadDisplay(); err == nil {
		t.Fatal("expected unknown display kind to fail")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
