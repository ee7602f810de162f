package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/tutorhub/tutorhub-admin/internal/moderation"
)

func newTestContext(method, target string) (*echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func parseVaryHeader(value string) map[string]int {
	parts := strings.Split(value, ",")
	out := make(map[string]int, len(parts))
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		out[token]++
	}
	return out
}

func TestAddVary(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "http://example.com/")
	c.Response().Header().Set(echo.HeaderVary, "Accept-Encoding")

	addVary(c, "HX-Request", "hx-target", "Accept-Encoding")

	got := parseVaryHeader(c.Response().Header().Get(echo.HeaderVary))
	if got["accept-encoding"] != 1 {
		t.Fatalf("Vary missing accept-encoding: %v", got)
	}
	if got["hx-request"] != 1 {
		t.Fatalf("Vary missing hx-request: %v", got)
	}
	if got["hx-target"] != 1 {
		t.Fatalf("Vary missing hx-target: %v", got)
	}
}

func TestAddVaryPreservesWildcard(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "http://example.com/")
	c.Response().Header().Set(echo.HeaderVary, "*")

	addVary(c, "HX-Request")

	if got := c.Response().Header().Get(echo.HeaderVary); got != "*" {
		t.Fatalf("Vary = %q, want *", got)
	}
}

func TestHXSection(t *testing.T) {
	tests := []struct {
		name   string
		hx     string
		target string
		want   moderation.Collection
		ok     bool
	}{
		{name: "pending", hx: "true", target: " pending-gigs ", want: moderation.CollectionPending, ok: true},
		{name: "reports", hx: "true", target: "abuse-reports", want: moderation.CollectionReports, ok: true},
		{name: "stats", hx: "true", target: "moderation-stats", want: moderation.CollectionStats, ok: true},
		{name: "body swap", hx: "true", target: "main"},
		{name: "not htmx", target: "pending-gigs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "http://example.com/moderation")
			if tt.hx != "" {
				c.Request().Header.Set("HX-Request", tt.hx)
			}
			c.Request().Header.Set("HX-Target", tt.target)

			got, ok := hxSection(c)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("hxSection() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFlashToastRoundTrip(t *testing.T) {
	c, rec := newTestContext(http.MethodPost, "http://example.com/moderation/gigs/1/approve")
	setFlashToast(c, toastFromNotification(notificationFixture()))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != flashToastCookieName {
		t.Fatalf("cookies = %v, want one %s cookie", cookies, flashToastCookieName)
	}

	next, _ := newTestContext(http.MethodGet, "http://example.com/moderation")
	next.Request().AddCookie(cookies[0])
	toast := popFlashToast(next)
	if toast == nil {
		t.Fatalf("popFlashToast() = nil")
	}
	if toast.Category != "success" || toast.Title != "Gig approved" {
		t.Fatalf("toast = %+v", toast)
	}
}
