package marketplace

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrUnauthorized matches 401 and 403 responses from the backend.
	ErrUnauthorized = errors.New("marketplace: unauthorized")
	// ErrNoToken is returned when no access token is available for an authenticated call.
	ErrNoToken = errors.New("marketplace: no access token")
	// ErrInvalidID is returned by ValidateID before any request is sent.
	ErrInvalidID = errors.New("invalid id")
)

// APIError is a non-2xx response from the backend. It never carries request
// credentials.
type APIError struct {
	Prefix     string
	StatusCode int
	Message    string
	URL        string
	Details    string
}

func (e *APIError) Error() string {
	status := fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	switch {
	case e.Message != "" && e.Details != "":
		return fmt.Sprintf("%s: %s: %s (%s)", e.Prefix, status, e.Message, e.Details)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Prefix, status, e.Message)
	case e.Details != "":
		return fmt.Sprintf("%s: %s (%s)", e.Prefix, status, e.Details)
	default:
		return fmt.Sprintf("%s: %s", e.Prefix, status)
	}
}

func (e *APIError) Is(target error) bool {
	if target == ErrUnauthorized {
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func newAPIError(prefix, reqURL string, status int, header http.Header, body []byte) *APIError {
	safe := safeURL(reqURL)
	return &APIError{
		Prefix:     prefix,
		StatusCode: status,
		Message:    extractAPIErrorMessage(body),
		URL:        safe,
		Details:    formatAPIErrorDetails(safe, header),
	}
}

func extractAPIErrorMessage(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, msg := range []string{payload.Detail, payload.Error, payload.Message} {
			if msg = strings.TrimSpace(msg); msg != "" {
				return msg
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return ""
	}
	if strings.HasPrefix(msg, "{") || strings.HasPrefix(msg, "<!DOCTYPE html") || strings.HasPrefix(msg, "<html") {
		return ""
	}
	msg = strings.Join(strings.Fields(msg), " ")
	const maxLen = 300
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return msg
}

func formatAPIErrorDetails(safe string, header http.Header) string {
	var parts []string
	if safe != "" {
		parts = append(parts, "url="+safe)
	}
	if header == nil {
		return strings.Join(parts, ", ")
	}
	if v := headerAny(header, "x-request-id", "x-correlation-id"); v != "" {
		parts = append(parts, "request_id="+v)
	}
	if v := header.Get("Retry-After"); v != "" {
		parts = append(parts, "retry_after="+v)
	}
	return strings.Join(parts, ", ")
}

func headerAny(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(h.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func safeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Scheme + "://" + u.Host + u.Path
}
