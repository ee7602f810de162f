package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"

	"github.com/tutorhub/tutorhub-admin/internal/audit"
	"github.com/tutorhub/tutorhub-admin/internal/auth"
	"github.com/tutorhub/tutorhub-admin/internal/config"
	"github.com/tutorhub/tutorhub-admin/internal/http/authn"
	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
	"github.com/tutorhub/tutorhub-admin/internal/moderation"
)

type pingerFunc func() error

func (f pingerFunc) Ping(context.Context) error { return f() }

func notificationFixture() moderation.Notification {
	return moderation.Notification{Level: moderation.LevelSuccess, Title: "Gig approved", Message: "Gig 1 is now live."}
}

// fakeBackend is an in-memory marketplace. Failures are injected per call.
type fakeBackend struct {
	mu      sync.Mutex
	stats   marketplace.Stats
	gigs    []marketplace.PendingGig
	reports []marketplace.AbuseReport
	calls   map[string]int

	pendingErr error
	approveErr error
	blockErr   error
}

func newFakeBackend(gigCount int) *fakeBackend {
	b := &fakeBackend{
		stats: marketplace.Stats{"users": "120", "pending_gigs": fmt.Sprint(gigCount)},
		calls: make(map[string]int),
	}
	for i := 1; i <= gigCount; i++ {
		b.gigs = append(b.gigs, marketplace.PendingGig{
			ID:            marketplace.ID(fmt.Sprint(40 + i)),
			Title:         fmt.Sprintf("Gig %d", 40+i),
			SubmitterName: "tutor",
		})
	}
	b.reports = []marketplace.AbuseReport{
		{ID: "7", Message: "Spam links", TargetType: "gig", TargetID: "41", ReportedActorID: "9"},
		{ID: "8", Message: "Anonymous complaint"},
	}
	return b
}

func (b *fakeBackend) record(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
}

func (b *fakeBackend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *fakeBackend) Stats(context.Context) (marketplace.Stats, error) {
	b.record("stats")
	return b.stats, nil
}

func (b *fakeBackend) PendingGigs(context.Context) ([]marketplace.PendingGig, error) {
	b.record("pending")
	if b.pendingErr != nil {
		return nil, b.pendingErr
	}
	return append([]marketplace.PendingGig(nil), b.gigs...), nil
}

func (b *fakeBackend) Reports(context.Context) ([]marketplace.AbuseReport, error) {
	b.record("reports")
	return append([]marketplace.AbuseReport(nil), b.reports...), nil
}

func (b *fakeBackend) ApproveGig(_ context.Context, id string) error {
	b.record("approve:" + id)
	return b.approveErr
}

func (b *fakeBackend) BlockUser(_ context.Context, id string) error {
	b.record("block:" + id)
	return b.blockErr
}

func (b *fakeBackend) DeleteReview(_ context.Context, id string) error {
	b.record("delete_review:" + id)
	return nil
}

type fakeAuthenticator struct {
	pair marketplace.TokenPair
	err  error
}

func (f fakeAuthenticator) Login(context.Context, string, string) (marketplace.TokenPair, error) {
	return f.pair, f.err
}

type testEnv struct {
	e        *echo.Echo
	h        *Handlers
	backend  *fakeBackend
	audit    *audit.MemoryStore
	sessions *scs.SessionManager
}

func newTestEnv(t *testing.T, backend *fakeBackend) *testEnv {
	t.Helper()
	e := echo.New()
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	store := audit.NewMemoryStore(0)
	sessions := scs.New()
	h := &Handlers{
		Cfg:      config.Config{PageSize: 5, MaxVisiblePages: 5},
		Sessions: sessions,
		Registry: moderation.NewRegistry(0),
		Audit:    store,
		Auth:     fakeAuthenticator{pair: marketplace.TokenPair{Access: "access-1", Refresh: "refresh-1"}},
		NewBackend: func(auth.Principal) (moderation.Backend, error) {
			return backend, nil
		},
		Logger: e.Logger,
	}
	return &testEnv{e: e, h: h, backend: backend, audit: store, sessions: sessions}
}

type requestOpts struct {
	form     url.Values
	hxTarget string
	hx       bool
	params   map[string]string
	anon     bool
}

func (env *testEnv) request(t *testing.T, method, target string, opts requestOpts) (*echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body io.Reader
	if opts.form != nil {
		body = strings.NewReader(opts.form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if opts.form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if opts.hx || opts.hxTarget != "" {
		req.Header.Set("HX-Request", "true")
	}
	if opts.hxTarget != "" {
		req.Header.Set("HX-Target", opts.hxTarget)
	}
	ctx, err := env.sessions.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if !opts.anon {
		c.Set(authn.ContextKeyPrincipal, auth.Principal{
			Email:       "mod@example.com",
			AccessToken: "access-1",
			Method:      auth.MethodMarketplace,
		})
	}
	if len(opts.params) > 0 {
		values := make(echo.PathValues, 0, len(opts.params))
		for name, value := range opts.params {
			values = append(values, echo.PathValue{Name: name, Value: value})
		}
		c.SetPathValues(values)
	}
	return c, rec
}

func mustPrincipal(t *testing.T, env *testEnv, c *echo.Context) auth.Principal {
	t.Helper()
	p, ok := authn.LoadPrincipal(c.Request().Context(), env.sessions)
	if !ok {
		t.Fatalf("no principal in session")
	}
	return p
}
