package main

import (
	"errors"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/tutorhub/tutorhub-admin/internal/config"
)

var (
	migrationsDir string
	migrateDown   bool
)

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Apply the audit trail and session schema migrations.",
	Args:        cobra.NoArgs,
	Annotations: structuredLogging(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadForMigrations()
		if err != nil {
			return err
		}

		m, err := migrate.New("file://"+migrationsDir, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer m.Close()

		if migrateDown {
			err = m.Steps(-1)
		} else {
			err = m.Up()
		}
		if err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				slog.Info("no changes to apply")
				return nil
			}
			return err
		}

		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return err
		}
		slog.Info("migrations applied successfully", "version", version, "dirty", dirty, "down", migrateDown)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "db/migrations", "directory holding the migration files")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back the most recent migration instead of applying")
}
