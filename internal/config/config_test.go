package config

import (
	"testing"
	"time"
)

var configKeys = []string{
	"DATABASE_URL", "HTTP_ADDR", "METRICS_ADDR", "AUTH_COOKIE_SECURE", "SESSION_LIFETIME",
	"MARKETPLACE_URL", "MARKETPLACE_TOKEN", "MARKETPLACE_REFRESH_TOKEN", "MARKETPLACE_TIMEOUT",
	"VAULT_ADDR", "VAULT_TOKEN", "VAULT_NAMESPACE", "VAULT_TOKEN_PATH", "VAULT_TOKEN_KEY",
	"PAGE_SIZE", "MAX_VISIBLE_PAGES", "CONTROLLER_IDLE_TTL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadWithOptions_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.HTTPAddr != defaultHTTPAddr {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, defaultHTTPAddr)
	}
	if cfg.MarketplaceTimeout != 30*time.Second {
		t.Fatalf("MarketplaceTimeout = %s, want 30s", cfg.MarketplaceTimeout)
	}
	if cfg.SessionLifetime != 12*time.Hour {
		t.Fatalf("SessionLifetime = %s, want 12h", cfg.SessionLifetime)
	}
	if cfg.ControllerIdleTTL != 30*time.Minute {
		t.Fatalf("ControllerIdleTTL = %s, want 30m", cfg.ControllerIdleTTL)
	}
	if cfg.PageSize != 10 || cfg.MaxVisiblePages != 5 {
		t.Fatalf("PageSize/MaxVisiblePages = %d/%d, want 10/5", cfg.PageSize, cfg.MaxVisiblePages)
	}
	if cfg.VaultTokenKey != "access_token" {
		t.Fatalf("VaultTokenKey = %q, want access_token", cfg.VaultTokenKey)
	}
	if cfg.UsesVault() {
		t.Fatalf("UsesVault() = true without VAULT_TOKEN_PATH")
	}
}

func TestLoadWithOptions_ParsesValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MARKETPLACE_URL", " https://tutors.example.com/ ")
	t.Setenv("MARKETPLACE_TIMEOUT", "5s")
	t.Setenv("AUTH_COOKIE_SECURE", "1")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("MAX_VISIBLE_PAGES", "7")
	t.Setenv("VAULT_ADDR", "https://vault.example.com")
	t.Setenv("VAULT_TOKEN_PATH", "/secret/data/tutorhub/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MarketplaceURL != "https://tutors.example.com" {
		t.Fatalf("MarketplaceURL = %q", cfg.MarketplaceURL)
	}
	if cfg.MarketplaceTimeout != 5*time.Second {
		t.Fatalf("MarketplaceTimeout = %s, want 5s", cfg.MarketplaceTimeout)
	}
	if !cfg.AuthCookieSecure {
		t.Fatalf("AuthCookieSecure = false, want true")
	}
	if cfg.PageSize != 25 || cfg.MaxVisiblePages != 7 {
		t.Fatalf("PageSize/MaxVisiblePages = %d/%d, want 25/7", cfg.PageSize, cfg.MaxVisiblePages)
	}
	if cfg.VaultTokenPath != "secret/data/tutorhub" || !cfg.UsesVault() {
		t.Fatalf("VaultTokenPath = %q", cfg.VaultTokenPath)
	}
}

func TestLoadWithOptions_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MARKETPLACE_TIMEOUT", "soon")
	t.Setenv("PAGE_SIZE", "0")
	t.Setenv("CONTROLLER_IDLE_TTL", "-1m")

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.MarketplaceTimeout != defaultMarketplaceTimeout {
		t.Fatalf("MarketplaceTimeout = %s, want default", cfg.MarketplaceTimeout)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Fatalf("PageSize = %d, want default", cfg.PageSize)
	}
	if cfg.ControllerIdleTTL != defaultControllerIdleTTL {
		t.Fatalf("ControllerIdleTTL = %s, want default", cfg.ControllerIdleTTL)
	}
}

func TestLoadWithOptions_RequiredValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		opts LoadOptions
	}{
		{name: "marketplace url", opts: LoadOptions{RequireMarketplaceURL: true}},
		{name: "database url", opts: LoadOptions{RequireDatabaseURL: true}},
		{name: "vault addr", env: map[string]string{"VAULT_TOKEN_PATH": "secret/data/x"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadWithOptions(tc.opts); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
