package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	loginPath         = "/api/auth/login/"
	refreshPath       = "/api/auth/token/refresh/"
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/auth/"
)

// ErrNoRefreshToken is returned when a refresh is needed but no refresh token is known.
var ErrNoRefreshToken = errors.New("marketplace: no refresh token")

// Login exchanges operator credentials for a token pair. The backend may return
// the refresh token in the body or only as a cookie; both are handled.
func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return TokenPair{}, errors.New("email and password are required")
	}

	body, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      loginPath,
		label:     "login",
		body:      map[string]string{"email": email, "password": password},
		anonymous: true,
	})
	if err != nil {
		return TokenPair{}, err
	}

	var payload struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return TokenPair{}, fmt.Errorf("decode login response: %w", err)
	}
	pair := TokenPair{
		Access:  strings.TrimSpace(payload.Access),
		Refresh: strings.TrimSpace(payload.Refresh),
	}
	if pair.Access == "" {
		return TokenPair{}, errors.New("login response did not include an access token")
	}
	if pair.Refresh == "" {
		pair.Refresh = c.cookieRefreshToken()
	} else {
		c.setRefreshCookie(pair.Refresh)
	}
	return pair, nil
}

// Refresh obtains a new access token. An empty refreshToken reuses the cookie
// captured at login.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if err := c.ensureClient(); err != nil {
		return "", err
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken != "" {
		c.setRefreshCookie(refreshToken)
	} else if c.cookieRefreshToken() == "" {
		return "", ErrNoRefreshToken
	}

	body, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      refreshPath,
		label:     "token_refresh",
		anonymous: true,
	})
	if err != nil {
		return "", err
	}
	var payload struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	access := strings.TrimSpace(payload.Access)
	if access == "" {
		return "", errors.New("refresh response did not include an access token")
	}
	return access, nil
}

func (c *Client) refreshCookieURL() *url.URL {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil
	}
	u.Path = strings.TrimRight(u.Path, "/") + refreshCookiePath
	return u
}

func (c *Client) setRefreshCookie(token string) {
	if c.HTTP == nil || c.HTTP.Jar == nil {
		return
	}
	u := c.refreshCookieURL()
	if u == nil {
		return
	}
	c.HTTP.Jar.SetCookies(u, []*http.Cookie{{
		Name:     refreshCookieName,
		Value:    token,
		Path:     u.Path,
		HttpOnly: true,
	}})
}

func (c *Client) cookieRefreshToken() string {
	if c.HTTP == nil || c.HTTP.Jar == nil {
		return ""
	}
	u := c.refreshCookieURL()
	if u == nil {
		return ""
	}
	for _, cookie := range c.HTTP.Jar.Cookies(u) {
		if cookie.Name == refreshCookieName {
			return cookie.Value
		}
	}
	return ""
}
