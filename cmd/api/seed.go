package main

import (
	"context"
	"fmt"

	"github.com/dafibh/spendwise/spendwise-backend/internal/repository/postgres"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the system categories and demo user on an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := postgres.NewStore(pool)
			return bootstrap(ctx, service.NewUserService(store), service.NewCategoryService(store))
		},
	}
}

// bootstrap seeds default data. Each step only writes to an empty table, so
// running it on every start is safe.
func bootstrap(ctx context.Context, users *service.UserService, categories *service.CategoryService) error {
	inserted, err := categories.SeedSystemCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed system categories: %w", err)
	}
	if inserted > 0 {
		log.Info().Int("count", inserted).Msg("Seeded system categories")
	}

	created, err := users.SeedDemoUser(ctx)
	if err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}
	if created {
		log.Info().Msg("Seeded demo user")
	}
	return nil
}
