package main

import (
	"github.com/dafibh/spendwise/spendwise-backend/internal/repository/postgres"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
			log.Info().Msg("Database migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := postgres.RollbackMigration(cfg.DatabaseURL); err != nil {
				return err
			}
			log.Info().Msg("Rolled back one migration")
			return nil
		},
	})

	return cmd
}
