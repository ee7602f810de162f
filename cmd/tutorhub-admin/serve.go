package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/tutorhub/tutorhub-admin/internal/audit"
	"github.com/tutorhub/tutorhub-admin/internal/config"
	httpapp "github.com/tutorhub/tutorhub-admin/internal/http"
	"github.com/tutorhub/tutorhub-admin/internal/http/handlers"
	"github.com/tutorhub/tutorhub-admin/internal/metrics"
	"github.com/tutorhub/tutorhub-admin/internal/moderation"
)

const (
	sessionCookieName     = "tutorhub_admin_session"
	registrySweepInterval = time.Minute
	shutdownTimeout       = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the moderation console.",
	Args:        cobra.NoArgs,
	Annotations: structuredLogging(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.Default()

	sessions := scs.New()
	sessions.Lifetime = cfg.SessionLifetime
	sessions.Cookie.Name = sessionCookieName
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.Secure = cfg.AuthCookieSecure
	sessions.Cookie.SameSite = http.SameSiteLaxMode

	h := &handlers.Handlers{
		Cfg:        cfg,
		Sessions:   sessions,
		Registry:   moderation.NewRegistry(cfg.ControllerIdleTTL),
		Auth:       handlers.MarketplaceLogin{BaseURL: cfg.MarketplaceURL, Timeout: cfg.MarketplaceTimeout},
		NewBackend: handlers.MarketplaceBackends(cfg.MarketplaceURL, cfg.MarketplaceTimeout),
		Logger:     logger,
	}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := pgxstore.New(pool)
		defer store.StopCleanup()
		sessions.Store = store

		auditStore, err := audit.NewPostgresStore(pool)
		if err != nil {
			return err
		}
		h.Audit = auditStore
		h.AuditPersistent = true
		h.DB = pool
	} else {
		logger.Warn("DATABASE_URL not set; sessions and the audit trail are kept in memory")
		store := memstore.New()
		defer store.StopCleanup()
		sessions.Store = store
		h.Audit = audit.NewMemoryStore(0)
	}

	go h.Registry.Run(ctx, registrySweepInterval)

	_, metricsErrCh := metrics.StartServer(ctx, cfg.MetricsAddr, logger)

	srv, err := httpapp.NewEchoServer(h, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "marketplace_url", cfg.MarketplaceURL)
		errCh <- srv.StartServer(httpServer)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx, httpServer)
		logger.Info("server stopped")
		return nil
	case err := <-metricsErrCh:
		return err
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
