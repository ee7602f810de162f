package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tutorhub/tutorhub-admin/internal/metrics"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultTimeout   = 30 * time.Second
	maxRetriesOn429  = 3
	maxErrorBodySize = 1 << 20 // 1 MiB
	userAgent        = "tutorhub-admin"
)

// Client talks to the marketplace REST backend on behalf of one operator.
type Client struct {
	BaseURL string
	Tokens  TokenSource
	HTTP    *http.Client
	Logger  *slog.Logger
}

// New creates a marketplace client. The HTTP client carries its own cookie jar so
// the refresh cookie set at login is replayed on refresh.
func New(baseURL string, tokens TokenSource, timeout time.Duration) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("marketplace base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("marketplace base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("marketplace base URL must be http(s), got %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("marketplace cookie jar: %w", err)
	}

	return &Client{
		BaseURL: base,
		Tokens:  tokens,
		HTTP:    &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

func (c *Client) ensureClient() error {
	if c == nil || c.BaseURL == "" {
		return errors.New("marketplace base URL is required")
	}
	if c.HTTP == nil {
		return errors.New("marketplace http client is not configured")
	}
	return nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Client) endpoint(path string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// request is one logical backend call. label names the endpoint in metrics.
type request struct {
	method string
	path   string
	label  string
	body   any
	// anonymous requests carry no bearer token and never trigger a refresh.
	anonymous bool
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if err := c.ensureClient(); err != nil {
		return nil, err
	}
	endpoint, err := c.endpoint(r.path)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if r.body != nil {
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", r.label, err)
		}
	}

	token := ""
	if !r.anonymous {
		token, err = c.accessToken(ctx)
		if err != nil {
			return nil, err
		}
	}

	refreshed := false
	var lastErr error
	for attempt := 0; attempt <= maxRetriesOn429; attempt++ {
		status, header, body, err := c.send(ctx, r, endpoint, token, payload)
		if err != nil {
			return nil, err
		}

		if status == http.StatusTooManyRequests {
			lastErr = newAPIError("marketplace api rate limited", endpoint, status, header, body)
			if attempt == maxRetriesOn429 {
				return nil, lastErr
			}
			wait, ok := retryAfterDuration(header.Get("Retry-After"))
			if !ok {
				wait = time.Second
			}
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		if status == http.StatusUnauthorized && !r.anonymous && !refreshed {
			fresh, ok, err := c.refreshAfterReject(ctx, token)
			if err != nil {
				c.logger().Warn("marketplace token refresh failed", "endpoint", r.label, "err", err)
			}
			if ok {
				refreshed = true
				token = fresh
				attempt--
				continue
			}
		}

		if status < 200 || status >= 300 {
			return nil, newAPIError("marketplace api failed", endpoint, status, header, body)
		}
		return body, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("marketplace request failed")
}

func (c *Client) send(ctx context.Context, r request, endpoint, token string, payload []byte) (int, http.Header, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, reader)
	if err != nil {
		return 0, nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		metrics.ObserveBackendRequest(r.label, 0, time.Since(started))
		return 0, nil, nil, fmt.Errorf("marketplace %s %s: %w", r.method, safeURL(endpoint), err)
	}
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	resp.Body.Close()
	metrics.ObserveBackendRequest(r.label, resp.StatusCode, time.Since(started))
	if readErr != nil {
		return 0, nil, nil, readErr
	}
	return resp.StatusCode, resp.Header, body, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.Tokens == nil {
		return "", ErrNoToken
	}
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (c *Client) refreshAfterReject(ctx context.Context, rejected string) (string, bool, error) {
	refresher, ok := c.Tokens.(Refresher)
	if !ok {
		return "", false, nil
	}
	fresh, err := refresher.Refresh(ctx, rejected)
	if err != nil {
		return "", false, err
	}
	fresh = strings.TrimSpace(fresh)
	if fresh == "" {
		return "", false, nil
	}
	return fresh, true, nil
}

func retryAfterDuration(header string) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
