package marketplace

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Refresher is implemented by token sources that can replace a token the
// backend rejected with 401.
type Refresher interface {
	Refresh(ctx context.Context, rejected string) (string, error)
}

// StaticToken is a fixed access token, typically from MARKETPLACE_TOKEN.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	token := strings.TrimSpace(string(t))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// RefreshFunc exchanges a refresh token for a new access token.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// SessionTokens holds an operator's token pair. Concurrent callers that hit a
// 401 with the same access token share a single refresh.
type SessionTokens struct {
	mu      sync.RWMutex
	access  string
	refresh string

	refreshFn RefreshFunc
	group     singleflight.Group
}

func NewSessionTokens(pair TokenPair, refreshFn RefreshFunc) *SessionTokens {
	return &SessionTokens{
		access:    strings.TrimSpace(pair.Access),
		refresh:   strings.TrimSpace(pair.Refresh),
		refreshFn: refreshFn,
	}
}

// UseSession installs a refreshing token source backed by this client.
func (c *Client) UseSession(pair TokenPair) *SessionTokens {
	tokens := NewSessionTokens(pair, c.Refresh)
	c.Tokens = tokens
	return tokens
}

func (s *SessionTokens) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.access == "" {
		return "", ErrNoToken
	}
	return s.access, nil
}

func (s *SessionTokens) Refresh(ctx context.Context, rejected string) (string, error) {
	s.mu.RLock()
	current, refresh := s.access, s.refresh
	s.mu.RUnlock()

	if current != "" && current != rejected {
		return current, nil
	}
	if refresh == "" || s.refreshFn == nil {
		return "", ErrNoRefreshToken
	}

	v, err, _ := s.group.Do("refresh", func() (any, error) {
		access, err := s.refreshFn(ctx, refresh)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.access = access
		s.mu.Unlock()
		return access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Pair returns the current token pair.
func (s *SessionTokens) Pair() TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TokenPair{Access: s.access, Refresh: s.refresh}
}
