package credentials

import (
	"errors"

	"github.com/tutorhub/tutorhub-admin/internal/config"
	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
)

// ErrNotConfigured is returned when neither a static token nor a Vault secret is configured.
var ErrNotConfigured = errors.New("no marketplace credentials configured: set MARKETPLACE_TOKEN or VAULT_TOKEN_PATH")

// Install sets the token source cfg describes on client. A Vault secret wins over
// MARKETPLACE_TOKEN. A static token with MARKETPLACE_REFRESH_TOKEN refreshes on 401.
func Install(client *marketplace.Client, cfg config.Config) error {
	if client == nil {
		return errors.New("marketplace client is required")
	}
	if cfg.UsesVault() {
		source, err := NewVaultToken(VaultOptions{
			Address:   cfg.VaultAddr,
			Namespace: cfg.VaultNamespace,
			Token:     cfg.VaultToken,
			Path:      cfg.VaultTokenPath,
			Key:       cfg.VaultTokenKey,
			Timeout:   cfg.MarketplaceTimeout,
		})
		if err != nil {
			return err
		}
		client.Tokens = source
		return nil
	}
	if cfg.MarketplaceToken == "" {
		return ErrNotConfigured
	}
	if cfg.MarketplaceRefreshToken != "" {
		client.UseSession(marketplace.TokenPair{
			Access:  cfg.MarketplaceToken,
			Refresh: cfg.MarketplaceRefreshToken,
		})
		return nil
	}
	client.Tokens = marketplace.StaticToken(cfg.MarketplaceToken)
	return nil
}
