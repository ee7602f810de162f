package credentials

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
)

const defaultVaultTimeout = 30 * time.Second

// ErrTokenUnchanged is returned by VaultToken.Refresh when the secret still
// holds the token the backend rejected.
var ErrTokenUnchanged = errors.New("vault secret still holds the rejected token")

type VaultOptions struct {
	Address   string
	Namespace string
	Token     string
	// Path is the logical path of the secret, e.g. "secret/data/tutorhub" for KV v2.
	Path string
	// Key is the field inside the secret that holds the marketplace access token.
	Key     string
	Timeout time.Duration
}

// VaultToken reads the marketplace access token from a Vault KV secret and
// caches it until the backend rejects it.
type VaultToken struct {
	client *vaultapi.Client
	path   string
	key    string

	mu     sync.Mutex
	cached string
}

func NewVaultToken(opts VaultOptions) (*VaultToken, error) {
	address := strings.TrimSpace(opts.Address)
	if address == "" {
		return nil, errors.New("vault address is required")
	}
	path := strings.Trim(strings.TrimSpace(opts.Path), "/")
	if path == "" {
		return nil, errors.New("vault secret path is required")
	}
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		key = "access_token"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultVaultTimeout
	}

	cfg := vaultapi.DefaultConfig()
	cfg.Address = address
	cfg.HttpClient = &http.Client{
		Timeout:   timeout,
		Transport: buildHTTPTransport(),
	}

	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client setup: %w", err)
	}
	if namespace := strings.TrimSpace(opts.Namespace); namespace != "" {
		client.SetNamespace(namespace)
	}
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, errors.New("vault token is required")
	}
	client.SetToken(token)

	return &VaultToken{client: client, path: path, key: key}, nil
}

func (v *VaultToken) Token(ctx context.Context) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cached != "" {
		return v.cached, nil
	}
	token, err := v.read(ctx)
	if err != nil {
		return "", err
	}
	v.cached = token
	return token, nil
}

// Refresh re-reads the secret, picking up a token rotated since the last read.
func (v *VaultToken) Refresh(ctx context.Context, rejected string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cached != "" && v.cached != rejected {
		return v.cached, nil
	}
	token, err := v.read(ctx)
	if err != nil {
		return "", err
	}
	if token == rejected {
		return "", ErrTokenUnchanged
	}
	v.cached = token
	return token, nil
}

func (v *VaultToken) read(ctx context.Context) (string, error) {
	secret, err := v.client.Logical().ReadWithContext(ctx, v.path)
	if err != nil {
		return "", fmt.Errorf("vault read %s: %w", v.path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret %s not found", v.path)
	}

	data := secret.Data
	// KV v2 nests the fields under "data".
	if nested, ok := data["data"].(map[string]any); ok {
		data = nested
	}
	raw, ok := data[v.key]
	if !ok {
		return "", fmt.Errorf("vault secret %s has no %q field", v.path, v.key)
	}
	token, ok := raw.(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("vault secret %s field %q is empty", v.path, v.key)
	}
	return strings.TrimSpace(token), nil
}

func buildHTTPTransport() http.RoundTripper {
	base, _ := http.DefaultTransport.(*http.Transport)
	if base == nil {
		return http.DefaultTransport
	}
	transport := base.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	return transport
}
