package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"taskboard/internal/app"
	"taskboard/internal/config"
	"taskboard/internal/repositories"
)

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*configPath, func(env *migrateEnv) error {
				return repositories.RunMigrations(env.db.DB, repositories.DefaultMigrationConfig(), env.logger)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*configPath, func(env *migrateEnv) error {
				return repositories.RollbackMigration(env.db.DB, steps, env.logger)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*configPath, func(env *migrateEnv) error {
				v, dirty, err := repositories.MigrationVersion(env.db.DB)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

type migrateEnv struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// withDB opens the configured database without waiting for the API wiring.
func withDB(configPath string, fn func(env *migrateEnv) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.Log, os.Stderr)
	db, err := app.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(&migrateEnv{db: db, logger: logger})
}
