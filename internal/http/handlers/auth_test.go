package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/tutorhub/tutorhub-admin/internal/http/authn"
	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
)

func TestHandleLoginPostStoresTokensAndRedirects(t *testing.T) {
	env := newTestEnv(t, newFakeBackend(1))

	c, rec := env.request(t, http.MethodPost, "/login", requestOpts{
		anon: true,
		form: url.Values{"email": {" Mod@Example.com "}, "password": {"hunter2"}, "next": {"/audit"}},
	})
	if err := env.h.HandleLoginPost(c); err != nil {
		t.Fatalf("HandleLoginPost() error = %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/audit" {
		t.Fatalf("Location = %q, want /audit", got)
	}
	principal, ok := authn.LoadPrincipal(c.Request().Context(), env.sessions)
	if !ok {
		t.Fatalf("principal not stored in session")
	}
	if principal.Email != "mod@example.com" || principal.AccessToken != "access-1" || principal.RefreshToken != "refresh-1" {
		t.Fatalf("principal = %+v", principal)
	}
}

func TestHandleLoginPostRejectedCredentials(t *testing.T) {
	env := newTestEnv(t, newFakeBackend(1))
	env.h.Auth = fakeAuthenticator{err: &marketplace.APIError{StatusCode: http.StatusUnauthorized}}

	c, rec := env.request(t, http.MethodPost, "/login", requestOpts{
		anon: true,
		form: url.Values{"email": {"mod@example.com"}, "password": {"wrong"}},
	})
	if err := env.h.HandleLoginPost(c); err != nil {
		t.Fatalf("HandleLoginPost() error = %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), invalidCredentialsMessage) {
		t.Fatalf("body missing invalid credentials message")
	}
	if _, ok := authn.LoadPrincipal(c.Request().Context(), env.sessions); ok {
		t.Fatalf("rejected login must not sign in")
	}
}

func TestHandleLoginPostBackendDown(t *testing.T) {
	env := newTestEnv(t, newFakeBackend(1))
	env.h.Auth = fakeAuthenticator{err: &marketplace.APIError{StatusCode: http.StatusServiceUnavailable}}

	c, rec := env.request(t, http.MethodPost, "/login", requestOpts{
		anon: true,
		form: url.Values{"email": {"mod@example.com"}, "password": {"pw"}},
	})
	if err := env.h.HandleLoginPost(c); err != nil {
		t.Fatalf("HandleLoginPost() error = %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	if !strings.Contains(rec.Body.String(), backendUnavailableMessage) {
		t.Fatalf("body missing backend message")
	}
}

func TestHandleLoginPostMissingPassword(t *testing.T) {
	env := newTestEnv(t, newFakeBackend(1))

	c, rec := env.request(t, http.MethodPost, "/login", requestOpts{
		anon: true,
		form: url.Values{"email": {"mod@example.com"}},
	})
	if err := env.h.HandleLoginPost(c); err != nil {
		t.Fatalf("HandleLoginPost() error = %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleLogoutForgetsController(t *testing.T) {
	env := newTestEnv(t, newFakeBackend(1))

	c, rec := env.request(t, http.MethodPost, "/login", requestOpts{
		anon: true,
		form: url.Values{"email": {"mod@example.com"}, "password": {"pw"}},
	})
	if err := env.h.HandleLoginPost(c); err != nil {
		t.Fatalf("HandleLoginPost() error = %v", err)
	}
	ctx := c.Request().Context()
	token := env.sessions.Token(ctx)
	if token == "" {
		t.Fatalf("login did not issue a session token")
	}

	// Mount a controller under the same session.
	mounted := env.e.NewContext(httptest.NewRequest(http.MethodGet, "/moderation", nil).WithContext(ctx), httptest.NewRecorder())
	mounted.Set(authn.ContextKeyPrincipal, mustPrincipal(t, env, mounted))
	if _, err := env.h.controllerFor(mounted); err != nil {
		t.Fatalf("controllerFor() error = %v", err)
	}
	if env.h.Registry.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", env.h.Registry.Len())
	}

	rec = httptest.NewRecorder()
	logout := env.e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil).WithContext(ctx), rec)
	if err := env.h.HandleLogoutPost(logout); err != nil {
		t.Fatalf("HandleLogoutPost() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	if env.h.Registry.Len() != 0 {
		t.Fatalf("registry len = %d after logout, want 0", env.h.Registry.Len())
	}
}
