package config

import (
	"testing"
	"time"
)

type mapEnv map[string]string

func (m mapEnv) Getenv(key string) string { return m[key] }

func validEnv() mapEnv {
	return mapEnv{
		"MASTER_SECRET":           "x",
		"SKETCHFAB_CLIENT_ID":     "cid",
		"SKETCHFAB_CLIENT_SECRET": "csecret",
		"SERVER_BASE_URL":         "https://proxy.example.com",
		"CLIENT_APP_URL":          "https://app.example.com",
	}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv(validEnv())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("expected default gin mode release, got %q", cfg.GinMode)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Fatalf("expected default upstream timeout 30s, got %v", cfg.UpstreamTimeout)
	}
}

func TestLoadConfigFromEnv_MissingRequired(t *testing.T) {
	for _, key := range []string{"MASTER_SECRET", "SKETCHFAB_CLIENT_ID", "SKETCHFAB_CLIENT_SECRET", "SERVER_BASE_URL", "CLIENT_APP_URL"} {
		env := validEnv()
		delete(env, key)
		if _, err := LoadConfigFromEnv(env); err == nil {
			t.Fatalf("expected error when %s is missing", key)
		}
	}
}

func TestLoadConfigFromEnv_CallbackURL(t *testing.T) {
	env := validEnv()
	env["SERVER_BASE_URL"] = "https://proxy.example.com/"
	cfg, err := LoadConfigFromEnv(env)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "https://proxy.example.com/api/sketchfab/auth/callback"
	if cfg.CallbackURL() != want {
		t.Fatalf("expected callback %q, got %q", want, cfg.CallbackURL())
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	env := validEnv()
	env["PORT"] = "1234"
	env["UPSTREAM_TIMEOUT_SECONDS"] = "5"
	cfg, err := LoadConfigFromEnv(env)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 1234 {
		t.Fatalf("expected port 1234, got %d", cfg.Port)
	}
	if cfg.UpstreamTimeout != 5*time.Second {
		t.Fatalf("expected upstream timeout 5s, got %v", cfg.UpstreamTimeout)
	}
}

func TestLoadConfigFromEnv_InvalidTimeout(t *testing.T) {
	env := validEnv()
	env["UPSTREAM_TIMEOUT_SECONDS"] = "0"
	if _, err := LoadConfigFromEnv(env); err == nil {
		t.Fatalf("expected error")
	}
}
