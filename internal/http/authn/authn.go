package authn

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"

	"github.com/tutorhub/tutorhub-admin/internal/auth"
)

const (
	ContextKeyPrincipal = "auth_principal"

	SessionKeyEmail        = "operator_email"
	SessionKeyAccessToken  = "operator_access_token"
	SessionKeyRefreshToken = "operator_refresh_token"
)

func PrincipalFromContext(c *echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(ContextKeyPrincipal).(auth.Principal)
	return p, ok
}

// LoadPrincipal reads the operator from the session. A session with an email but
// no token is treated as signed out.
func LoadPrincipal(ctx context.Context, sessions *scs.SessionManager) (auth.Principal, bool) {
	p := auth.Principal{
		Email:        sessions.GetString(ctx, SessionKeyEmail),
		AccessToken:  sessions.GetString(ctx, SessionKeyAccessToken),
		RefreshToken: sessions.GetString(ctx, SessionKeyRefreshToken),
		Method:       auth.MethodMarketplace,
	}
	if !p.Valid() {
		return auth.Principal{}, false
	}
	return p, true
}

// StorePrincipal renews the session token and stores the operator in it.
func StorePrincipal(ctx context.Context, sessions *scs.SessionManager, p auth.Principal) error {
	if err := sessions.RenewToken(ctx); err != nil {
		return err
	}
	sessions.Put(ctx, SessionKeyEmail, p.Email)
	sessions.Put(ctx, SessionKeyAccessToken, p.AccessToken)
	sessions.Put(ctx, SessionKeyRefreshToken, p.RefreshToken)
	return nil
}

func RequireAuth(sessions *scs.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			principal, ok := LoadPrincipal(c.Request().Context(), sessions)
			if !ok {
				return handleUnauth(c)
			}
			c.Set(ContextKeyPrincipal, principal)
			return next(c)
		}
	}
}

func handleUnauth(c *echo.Context) error {
	location := "/login"
	if c.Request().Method == http.MethodGet {
		if next := SanitizeNext(c.Request().URL.RequestURI()); next != "" {
			location = "/login?next=" + url.QueryEscape(next)
		}
	}
	if strings.EqualFold(strings.TrimSpace(c.Request().Header.Get("HX-Request")), "true") {
		c.Response().Header().Set("HX-Redirect", location)
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.Redirect(http.StatusSeeOther, location)
}

func SanitizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || next == "/" || len(next) > 2048 {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if strings.ContainsAny(next, "\\\r\n\t") {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || u.Scheme != "" {
		return ""
	}
	if strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, "\\") {
		return ""
	}
	if u.Path == "/login" || strings.HasPrefix(u.Path, "/login/") {
		return ""
	}
	return next
}
