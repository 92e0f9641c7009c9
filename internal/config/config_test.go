package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "8000" {
		t.Errorf("port = %q, want 8000", cfg.App.Port)
	}
	if cfg.App.CORSOrigin != "http://localhost:5173" {
		t.Errorf("cors origin = %q", cfg.App.CORSOrigin)
	}
	if cfg.Upload.Dir != "uploads/screenshots" {
		t.Errorf("upload dir = %q", cfg.Upload.Dir)
	}
	if !cfg.Postgres.RunMigrations {
		t.Error("migrations should default to on")
	}
	if cfg.App.RequestTimeout() != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.App.RequestTimeout())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9001")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("UPLOAD_DIR", "/tmp/shots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.App.Addr(); got != "127.0.0.1:9001" {
		t.Errorf("addr = %q", got)
	}
	if cfg.App.RequestTimeout() != 0 {
		t.Errorf("timeout = %v, want 0", cfg.App.RequestTimeout())
	}
	if cfg.Postgres.RunMigrations {
		t.Error("migrations should be off")
	}
	if cfg.Upload.Dir != "/tmp/shots" {
		t.Errorf("upload dir = %q", cfg.Upload.Dir)
	}
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid REDIS_DB")
	}
}
