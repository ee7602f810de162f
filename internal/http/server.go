package httpapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/tutorhub/tutorhub-admin/internal/http/authn"
	"github.com/tutorhub/tutorhub-admin/internal/http/handlers"
)

const headerRequestID = "X-Request-ID"

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h *handlers.Handlers
	e *echo.Echo
}

// NewEchoServer creates a new HTTP server around h.
func NewEchoServer(h *handlers.Handlers, logger *slog.Logger) (*EchoServer, error) {
	if h == nil {
		return nil, errors.New("handlers are required")
	}
	if h.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.Logger = logger
	es := &EchoServer{h: h, e: e}
	e.HTTPErrorHandler = es.httpErrorHandler
	e.Use(requestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger())
	es.registerRoutes()
	return es, nil
}

func (es *EchoServer) registerRoutes() {
	es.e.GET("/healthz", es.h.HandleHealthz)

	site := es.e.Group("")
	site.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   es.h.Cfg.AuthCookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	site.GET("/login", es.h.HandleLoginGet)
	site.POST("/login", es.h.HandleLoginPost)
	site.POST("/logout", es.h.HandleLogoutPost)

	authed := site.Group("")
	authed.Use(authn.RequireAuth(es.h.Sessions))
	authed.GET("/", es.h.HandleRoot)
	authed.GET("/moderation", es.h.HandleModeration)
	authed.POST("/moderation/reload", es.h.HandleModerationReload)
	authed.POST("/moderation/gigs/:id/approve", es.h.HandleApproveGig)
	authed.POST("/moderation/users/:id/block", es.h.HandleBlockUser)
	authed.POST("/moderation/reviews/delete", es.h.HandleDeleteReview)
	authed.GET("/audit", es.h.HandleAudit)
}

// Handler returns the application with session loading and saving applied.
func (es *EchoServer) Handler() http.Handler {
	return es.h.Sessions.LoadAndSave(es.e)
}

// StartServer serves on server, installing the session-wrapped handler.
func (es *EchoServer) StartServer(server *http.Server) error {
	server.Handler = es.Handler()
	return server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (es *EchoServer) Shutdown(ctx context.Context, server *http.Server) error {
	return server.Shutdown(ctx)
}

func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	if err == nil {
		return
	}
	status := httpStatusFromError(err)
	switch {
	case status == http.StatusNotFound:
		_ = c.String(http.StatusNotFound, "404 page not found")
	case status >= http.StatusInternalServerError:
		_ = es.h.RenderError(c, err)
	default:
		_ = c.String(status, http.StatusText(status))
	}
}

func httpStatusFromError(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code > 0 {
		return he.Code
	}
	var coder interface{ StatusCode() int }
	if errors.As(err, &coder) {
		if code := coder.StatusCode(); code > 0 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// requestID reuses a well-formed inbound X-Request-ID or generates one.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(headerRequestID))
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			c.Set(handlers.ContextKeyRequestID, id)
			c.Response().Header().Set(headerRequestID, id)
			return next(c)
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			started := time.Now()
			err := next(c)
			requestID, _ := c.Get(handlers.ContextKeyRequestID).(string)
			attrs := []any{
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"duration_ms", time.Since(started).Milliseconds(),
			}
			if err != nil {
				attrs = append(attrs, "status", httpStatusFromError(err), "error", err)
				c.Logger().Warn("http request failed", attrs...)
				return err
			}
			c.Logger().Debug("http request", attrs...)
			return nil
		}
	}
}
