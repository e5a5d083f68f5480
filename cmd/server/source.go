package main

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/procur/internal/config"
	"github.com/stwalsh4118/procur/internal/database"
	"github.com/stwalsh4118/procur/internal/datasource"
	"github.com/stwalsh4118/procur/internal/logger"
	"github.com/stwalsh4118/procur/internal/repository"
)

// openSource builds the configured data source. The returned close function
// releases whatever the source holds open and is never nil.
func openSource(ctx context.Context, cfg *config.Config, log *logger.Logger) (datasource.DataSource, func(), error) {
	noop := func() {}

	fixtures, err := datasource.NewFixtureSource(cfg.Source.FixturesDir)
	if err != nil {
		return nil, noop, err
	}

	var (
		primary datasource.DataSource
		closer  = noop
	)

	switch cfg.Source.Kind {
	case config.SourceFixture:
		return fixtures, noop, nil

	case config.SourceRemote:
		primary = datasource.NewRemoteSource(datasource.RemoteConfig{
			BaseURL: cfg.Remote.BaseURL,
			Token:   cfg.Remote.Token,
			Timeout: cfg.Remote.Timeout,
		})

	case config.SourcePostgres:
		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		repo := repository.NewRecordRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})
		primary, closer = repo, db.Close

	case config.SourceSheets:
		sheets, err := datasource.NewSheetsSource(ctx, datasource.SheetsConfig{
			CredentialsPath: cfg.Sheets.CredentialsPath,
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		})
		if err != nil {
			return nil, noop, err
		}
		primary = sheets

	default:
		return nil, noop, fmt.Errorf("unknown data source %q", cfg.Source.Kind)
	}

	if !cfg.Source.Fallback {
		return primary, closer, nil
	}
	return datasource.NewFallbackSource(primary, fixtures, log), closer, nil
}
