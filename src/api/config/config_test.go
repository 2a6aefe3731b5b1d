package config

import "testing"

func TestLoadBootstrapPasswordOptional(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BOOTSTRAP_PASSWORD", "")

	// Must not fatal: the bootstrap password is only consulted until the
	// first member exists, so an unset var has to load cleanly.
	cfg := Load()
	if cfg.BootstrapPassword != "" {
		t.Errorf("BootstrapPassword = %q, want empty", cfg.BootstrapPassword)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.Port)
	}
	if cfg.BootstrapEmail == "" {
		t.Error("BootstrapEmail default missing")
	}
}
