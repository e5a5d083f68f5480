package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/procur/internal/config"
	"github.com/stwalsh4118/procur/internal/database"
	"github.com/stwalsh4118/procur/internal/datasource"
	"github.com/stwalsh4118/procur/internal/models"
	"github.com/stwalsh4118/procur/internal/repository"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [collection...]",
		Short: "Replace Postgres records with fixture data",
		Long: `Seed loads fixture records into the dashboard_records table used by
DATA_SOURCE=postgres. Database settings come from the DB_* environment
variables (or the .env file). Without arguments every collection is seeded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			collections := datasource.Collections
			if len(args) > 0 {
				collections = make([]datasource.Collection, 0, len(args))
				for _, a := range args {
					c, err := datasource.ParseCollection(a)
					if err != nil {
						return err
					}
					collections = append(collections, c)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			src, err := root.source()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.NewPostgresPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewRecordRepository(db.Pool)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}
			return seed(cmd, src, repo, collections)
		},
	}
}

// seeder is the write side of the record store.
type seeder interface {
	Replace(ctx context.Context, collection datasource.Collection, records []models.RawRecord) error
}

func seed(cmd *cobra.Command, src datasource.DataSource, dst seeder, collections []datasource.Collection) error {
	for _, c := range collections {
		recs, err := src.Fetch(cmd.Context(), c)
		if err != nil {
			return err
		}
		if err := dst.Replace(cmd.Context(), c, recs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d records\n", c, len(recs))
	}
	return nil
}
