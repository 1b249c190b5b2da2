// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/inventra/backend-go/internal/cache"
	"github.com/andresuchdata/inventra/backend-go/internal/config"
	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/andresuchdata/inventra/backend-go/internal/drive"
	"github.com/andresuchdata/inventra/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/inventra/backend-go/internal/service"
	"github.com/andresuchdata/inventra/backend-go/internal/shopify"
	"github.com/andresuchdata/inventra/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// App holds the wired services shared by the server and the CLI.
type App struct {
	Report *service.ReportService
	Stores []storage.ObjectStorage
	Prefix string

	db *postgres.DB
}

// New wires every optional component enabled in cfg. Only the Shopify
// client is mandatory; a failing cache falls back to no caching.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	client, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		return nil, fmt.Errorf("failed to create shopify client: %w", err)
	}

	a := &App{Prefix: cfg.Storage.Prefix}
	opts := []service.Option{}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("Report cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}
	opts = append(opts, service.WithCache(reportCache))

	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.db = db
		opts = append(opts, service.WithArchive(postgres.NewCatalogRepository(db)))
		log.Info().Str("host", cfg.Database.Host).Msg("Catalog archive enabled")
	}

	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Stores = append(a.Stores, store)
	}

	if cfg.Drive.Enabled {
		credentials, err := os.ReadFile(cfg.Drive.CredentialsFile)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to read drive credentials: %w", err)
		}
		publisher, err := drive.NewPublisher(ctx, credentials, cfg.Drive.FolderID)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Stores = append(a.Stores, publisher)
	}

	a.Report = service.NewReportService(client, cfg.Shopify.Shop, cfg.Report, opts...)
	return a, nil
}

// Publish uploads the report artefacts to every configured store.
func (a *App) Publish(ctx context.Context, report *domain.Report) ([]string, error) {
	if len(a.Stores) == 0 {
		return nil, fmt.Errorf("no publish destination configured")
	}
	return service.Publish(ctx, report, a.Prefix, a.Stores...)
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}
}
