package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database"
	"github.com/EgehanKilicarslan/library-api/internal/logger"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSQLDB(func(db *sql.DB) error {
					return database.RunMigrations(db)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSQLDB(database.MigrationStatus)
			},
		},
	)

	return cmd
}

// withSQLDB opens a plain database/sql connection for goose
func withSQLDB(fn func(db *sql.DB) error) error {
	cfg := config.LoadConfig()
	appLogger := logger.New(cfg)

	db, err := sql.Open("postgres", database.DSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	appLogger.Info("🔄 [Migrate] Connected", "host", cfg.PostgreSQLHost, "database", cfg.PostgreSQLDatabase)
	if err := fn(db); err != nil {
		return err
	}
	appLogger.Info("✅ [Migrate] Done")
	return nil
}
