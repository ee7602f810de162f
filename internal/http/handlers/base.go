// Package handlers contains HTTP handler logic split by domain.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/tutorhub/tutorhub-admin/internal/audit"
	"github.com/tutorhub/tutorhub-admin/internal/auth"
	"github.com/tutorhub/tutorhub-admin/internal/config"
	"github.com/tutorhub/tutorhub-admin/internal/http/authn"
	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
	"github.com/tutorhub/tutorhub-admin/internal/http/views"
	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
	"github.com/tutorhub/tutorhub-admin/internal/moderation"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// Authenticator exchanges operator credentials for marketplace tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (marketplace.TokenPair, error)
}

// BackendFactory builds the marketplace backend a signed-in operator's
// controller talks to.
type BackendFactory func(p auth.Principal) (moderation.Backend, error)

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg        config.Config
	Sessions   *scs.SessionManager
	Registry   *moderation.Registry
	Audit      audit.Store
	Auth       Authenticator
	NewBackend BackendFactory
	Logger     *slog.Logger
	DB         Pinger

	// AuditPersistent is false when the audit trail only lives in memory.
	AuditPersistent bool
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handlers) pageSize() int {
	if h.Cfg.PageSize > 0 {
		return h.Cfg.PageSize
	}
	return config.DefaultPageSize
}

func (h *Handlers) maxVisiblePages() int {
	if h.Cfg.MaxVisiblePages > 0 {
		return h.Cfg.MaxVisiblePages
	}
	return config.DefaultMaxVisiblePages
}

func csrfToken(c *echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

// LayoutData builds the common layout data for page rendering.
func (h *Handlers) LayoutData(c *echo.Context, title string) viewmodels.LayoutData {
	principal, _ := authn.PrincipalFromContext(c)
	return viewmodels.LayoutData{
		Title:      title,
		CSRFToken:  csrfToken(c),
		UserEmail:  principal.Email,
		Toast:      popFlashToast(c),
		ActivePath: c.Request().URL.Path,
	}
}

// controllerFor returns the signed-in operator's moderation controller, building
// it on first use within the session.
func (h *Handlers) controllerFor(c *echo.Context) (*moderation.Controller, error) {
	if h.Registry == nil || h.NewBackend == nil {
		return nil, errors.New("moderation is not configured")
	}
	principal, ok := authn.PrincipalFromContext(c)
	if !ok {
		return nil, errors.New("no operator in request context")
	}
	key := ""
	if h.Sessions != nil {
		key = h.Sessions.Token(c.Request().Context())
	}
	if key == "" {
		key = "operator:" + principal.Email
	}
	return h.Registry.Get(key, principal.Email, func() (*moderation.Controller, error) {
		backend, err := h.NewBackend(principal)
		if err != nil {
			return nil, err
		}
		return moderation.New(moderation.Options{
			Backend:  backend,
			Recorder: h.Audit,
			Operator: principal.Email,
			Logger:   h.logger(),
		})
	})
}

// RenderComponent renders a templ component as the response.
func (h *Handlers) RenderComponent(c *echo.Context, component templ.Component) error {
	return h.renderComponentStatus(c, http.StatusOK, component)
}

func (h *Handlers) renderComponentStatus(c *echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response().WriteHeader(status)
	if err := component.Render(c.Request().Context(), c.Response()); err != nil {
		c.Logger().Error("render component", "path", c.Request().URL.Path, "error", err)
		return nil
	}
	return nil
}

// RenderError returns a plain text error response.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	if req := c.Request(); req != nil && req.URL != nil {
		path = req.URL.Path
	}
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
	}
	c.Logger().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	msg = fmt.Sprintf("%s Code: %s.", msg, InternalErrorCode)
	return c.String(http.StatusInternalServerError, msg)
}

// RenderNotFound returns a 404 response.
func (h *Handlers) RenderNotFound(c *echo.Context) error {
	if isHX(c) {
		return c.String(http.StatusNotFound, "404 page not found")
	}
	return h.renderComponentStatus(c, http.StatusNotFound, views.NotFoundPage(h.LayoutData(c, "Not found")))
}
