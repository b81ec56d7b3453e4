package gateway

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8090 {
		t.Fatalf("expected default port 8090, got %d", cfg.Port)
	}
	if cfg.StoragePath != "zenith.db" {
		t.Fatalf("expected default storage path, got %q", cfg.StoragePath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected default token ttl 24h, got %v", cfg.TokenTTL)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("ZENITH_GATEWAY_PORT", "9001")
	t.Setenv("ZENITH_GATEWAY_TOKEN_SECRET", "env-secret")

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-storage", "/tmp/flag.db", "-token-ttl", "1h"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("expected env port 9001, got %d", cfg.Port)
	}
	if cfg.TokenSecret != "env-secret" {
		t.Fatalf("expected env secret, got %q", cfg.TokenSecret)
	}
	if cfg.StoragePath != "/tmp/flag.db" {
		t.Fatalf("expected flag storage path, got %q", cfg.StoragePath)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected flag ttl 1h, got %v", cfg.TokenTTL)
	}
}
