package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
)

func TestRenderErrorDoesNotLeakError(t *testing.T) {
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	req := httptest.NewRequest(http.MethodGet, "http://example.com/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "req-123")

	h := &Handlers{}
	if err := h.RenderError(c, errors.New("marketplace token=secret")); err != nil {
		t.Fatalf("RenderError: %v", err)
	}

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusInternalServerError)
	}

	body := rec.Body.String()
	if strings.Contains(body, "token") || strings.Contains(body, "secret") {
		t.Fatalf("response leaked error details: %q", body)
	}
	if !strings.Contains(body, "Internal server error") {
		t.Fatalf("response missing generic message: %q", body)
	}
	if !strings.Contains(body, "Reference: req-123") {
		t.Fatalf("response missing request reference: %q", body)
	}
	if !strings.Contains(body, "Code: "+InternalErrorCode) {
		t.Fatalf("response missing error code: %q", body)
	}
}

func TestHandleHealthz(t *testing.T) {
	t.Run("no database", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "http://example.com/healthz")
		h := &Handlers{}
		if err := h.HandleHealthz(c); err != nil {
			t.Fatalf("HandleHealthz() error = %v", err)
		}
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
		}
	})

	t.Run("database down", func(t *testing.T) {
		e := echo.New()
		e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "http://example.com/healthz", nil), rec)
		h := &Handlers{DB: pingerFunc(func() error { return errors.New("connection refused") })}
		if err := h.HandleHealthz(c); err != nil {
			t.Fatalf("HandleHealthz() error = %v", err)
		}
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status=%d want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})
}
