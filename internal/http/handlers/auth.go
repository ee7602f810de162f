package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/tutorhub/tutorhub-admin/internal/auth"
	"github.com/tutorhub/tutorhub-admin/internal/http/authn"
	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
	"github.com/tutorhub/tutorhub-admin/internal/http/views"
	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
	"github.com/tutorhub/tutorhub-admin/internal/moderation"
)

const (
	invalidCredentialsMessage = "Invalid email or password."
	backendUnavailableMessage = "The marketplace could not be reached. Try again shortly."
)

func (h *Handlers) HandleLoginGet(c *echo.Context) error {
	if h.Sessions == nil {
		return errors.New("auth sessions not configured")
	}

	if _, ok := authn.LoadPrincipal(c.Request().Context(), h.Sessions); ok {
		return c.Redirect(http.StatusSeeOther, "/moderation")
	}

	data := viewmodels.LoginViewData{
		CSRFToken: csrfToken(c),
		Next:      authn.SanitizeNext(c.QueryParam("next")),
		Toast:     popFlashToast(c),
	}
	return h.RenderComponent(c, views.LoginPage(data))
}

func (h *Handlers) HandleLoginPost(c *echo.Context) error {
	if h.Sessions == nil || h.Auth == nil {
		return errors.New("auth not configured")
	}

	ctx := c.Request().Context()
	email := auth.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	next := authn.SanitizeNext(c.FormValue("next"))

	data := viewmodels.LoginViewData{
		CSRFToken: csrfToken(c),
		Email:     email,
		Next:      next,
	}

	if email == "" || strings.TrimSpace(password) == "" {
		data.ErrorMessage = invalidCredentialsMessage
		return h.renderComponentStatus(c, http.StatusUnprocessableEntity, views.LoginPage(data))
	}

	pair, err := h.Auth.Login(ctx, email, password)
	if err != nil {
		if isRejectedLogin(err) {
			c.Logger().Info("operator login rejected", "email", email, "ip", c.RealIP())
			data.ErrorMessage = invalidCredentialsMessage
			return h.renderComponentStatus(c, http.StatusUnauthorized, views.LoginPage(data))
		}
		c.Logger().Error("operator login failed", "email", email, "error", err)
		data.ErrorMessage = backendUnavailableMessage
		return h.renderComponentStatus(c, http.StatusBadGateway, views.LoginPage(data))
	}

	principal := auth.Principal{
		Email:        email,
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		Method:       auth.MethodMarketplace,
	}
	if err := authn.StorePrincipal(ctx, h.Sessions, principal); err != nil {
		return err
	}
	c.Logger().Info("operator signed in", "email", email, "ip", c.RealIP())

	if next != "" {
		return c.Redirect(http.StatusSeeOther, next)
	}
	return c.Redirect(http.StatusSeeOther, "/moderation")
}

func (h *Handlers) HandleLogoutPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errors.New("auth sessions not configured")
	}

	ctx := c.Request().Context()
	if h.Registry != nil {
		h.Registry.Forget(h.Sessions.Token(ctx))
	}
	if err := h.Sessions.Destroy(ctx); err != nil {
		return err
	}
	setFlashToast(c, viewmodels.ToastViewData{
		Category: "success",
		Title:    "Signed out",
	})
	return c.Redirect(http.StatusSeeOther, "/login")
}

func isRejectedLogin(err error) bool {
	if errors.Is(err, marketplace.ErrUnauthorized) {
		return true
	}
	status := marketplace.StatusCode(err)
	return status == http.StatusBadRequest
}

// MarketplaceLogin signs operators in with a fresh client per attempt so
// refresh cookies never leak between operators.
type MarketplaceLogin struct {
	BaseURL string
	Timeout time.Duration
}

func (m MarketplaceLogin) Login(ctx context.Context, email, password string) (marketplace.TokenPair, error) {
	client, err := marketplace.New(m.BaseURL, nil, m.Timeout)
	if err != nil {
		return marketplace.TokenPair{}, err
	}
	return client.Login(ctx, email, password)
}

// MarketplaceBackends builds one marketplace client per operator, authorized
// with the tokens from the operator's session.
func MarketplaceBackends(baseURL string, timeout time.Duration) BackendFactory {
	return func(p auth.Principal) (moderation.Backend, error) {
		client, err := marketplace.New(baseURL, nil, timeout)
		if err != nil {
			return nil, err
		}
		client.UseSession(marketplace.TokenPair{Access: p.AccessToken, Refresh: p.RefreshToken})
		return client, nil
	}
}
