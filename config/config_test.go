package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("Mode = %q, want release", cfg.Server.Mode)
	}
	if cfg.Reader.CharThreshold != 500 {
		t.Errorf("CharThreshold = %d, want 500", cfg.Reader.CharThreshold)
	}
	if cfg.Fetch.DefaultTimeout != 30*time.Second {
		t.Errorf("DefaultTimeout = %v, want 30s", cfg.Fetch.DefaultTimeout)
	}
	if cfg.RateLimit.RequestsPerSecond != 5.0 || cfg.RateLimit.Burst != 10 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("READABLE_PORT", "9090")
	t.Setenv("READABLE_CHAR_THRESHOLD", "250")
	t.Setenv("READABLE_API_KEYS", "key-one, key-two ,")
	t.Setenv("READABLE_DEFAULT_TIMEOUT", "10s")
	t.Setenv("READABLE_RATE_RPS", "2.5")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Reader.CharThreshold != 250 {
		t.Errorf("CharThreshold = %d, want 250", cfg.Reader.CharThreshold)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[0] != "key-one" || cfg.Auth.APIKeys[1] != "key-two" {
		t.Errorf("APIKeys = %v", cfg.Auth.APIKeys)
	}
	if cfg.Fetch.DefaultTimeout != 10*time.Second {
		t.Errorf("DefaultTimeout = %v", cfg.Fetch.DefaultTimeout)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("READABLE_PORT", "not-a-number")
	t.Setenv("READABLE_AUTH_ENABLED", "maybe")

	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want the default on parse failure", cfg.Server.Port)
	}
	if cfg.Auth.Enabled != true {
		t.Error("Enabled should fall back to the default on parse failure")
	}
}
