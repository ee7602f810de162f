package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr           = ":8080"
	defaultMarketplaceTimeout = 30 * time.Second
	defaultSessionLifetime    = 12 * time.Hour
	defaultControllerIdleTTL  = 30 * time.Minute
	DefaultPageSize           = 10
	DefaultMaxVisiblePages    = 5
	defaultVaultTokenKey      = "access_token"
)

type Config struct {
	DatabaseURL      string
	HTTPAddr         string
	MetricsAddr      string
	AuthCookieSecure bool
	SessionLifetime  time.Duration

	MarketplaceURL          string
	MarketplaceToken        string
	MarketplaceRefreshToken string
	MarketplaceTimeout      time.Duration

	VaultAddr      string
	VaultToken     string
	VaultNamespace string
	VaultTokenPath string
	VaultTokenKey  string

	PageSize          int
	MaxVisiblePages   int
	ControllerIdleTTL time.Duration
}

type LoadOptions struct {
	RequireDatabaseURL    bool
	RequireMarketplaceURL bool
}

// Load reads the configuration needed by the console and the moderate commands.
func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireMarketplaceURL: true})
}

// LoadForMigrations reads the configuration needed to apply database migrations.
func LoadForMigrations() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: true})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:         getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:      strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		AuthCookieSecure: getenvBoolDefault("AUTH_COOKIE_SECURE", false),
		SessionLifetime:  getenvDurationDefault("SESSION_LIFETIME", defaultSessionLifetime),

		MarketplaceURL:          strings.TrimRight(strings.TrimSpace(os.Getenv("MARKETPLACE_URL")), "/"),
		MarketplaceToken:        strings.TrimSpace(os.Getenv("MARKETPLACE_TOKEN")),
		MarketplaceRefreshToken: strings.TrimSpace(os.Getenv("MARKETPLACE_REFRESH_TOKEN")),
		MarketplaceTimeout:      getenvDurationDefault("MARKETPLACE_TIMEOUT", defaultMarketplaceTimeout),

		VaultAddr:      strings.TrimSpace(os.Getenv("VAULT_ADDR")),
		VaultToken:     strings.TrimSpace(os.Getenv("VAULT_TOKEN")),
		VaultNamespace: strings.TrimSpace(os.Getenv("VAULT_NAMESPACE")),
		VaultTokenPath: strings.Trim(strings.TrimSpace(os.Getenv("VAULT_TOKEN_PATH")), "/"),
		VaultTokenKey:  getenvDefault("VAULT_TOKEN_KEY", defaultVaultTokenKey),

		PageSize:          getenvIntDefault("PAGE_SIZE", DefaultPageSize),
		MaxVisiblePages:   getenvIntDefault("MAX_VISIBLE_PAGES", DefaultMaxVisiblePages),
		ControllerIdleTTL: getenvDurationDefault("CONTROLLER_IDLE_TTL", defaultControllerIdleTTL),
	}

	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	if opts.RequireMarketplaceURL && cfg.MarketplaceURL == "" {
		return cfg, errors.New("MARKETPLACE_URL is required")
	}
	if cfg.VaultTokenPath != "" && cfg.VaultAddr == "" {
		return cfg, errors.New("VAULT_ADDR is required when VAULT_TOKEN_PATH is set")
	}

	return cfg, nil
}

// UsesVault reports whether the API token should be read from Vault.
func (c Config) UsesVault() bool {
	return c.VaultTokenPath != ""
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}

func getenvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
