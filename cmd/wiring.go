package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/chrisdamba/foodmatch/internal/output"
	"github.com/chrisdamba/foodmatch/internal/ranking"
	"github.com/chrisdamba/foodmatch/internal/recommender"
	"github.com/chrisdamba/foodmatch/internal/repositories"
	"github.com/chrisdamba/foodmatch/internal/repositories/file"
	"github.com/chrisdamba/foodmatch/internal/repositories/postgres"
)

type catalog struct {
	vendors   repositories.VendorRepository
	menuItems repositories.MenuItemRepository // nil for the file catalog
	close     func()
}

func (a *app) openCatalog(ctx context.Context) (*catalog, error) {
	switch a.cfg.Catalog.Source {
	case "postgres":
		pool, err := postgres.NewPool(ctx, a.cfg.Database)
		if err != nil {
			return nil, err
		}
		if a.cfg.Database.MigrateOnStartup {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &catalog{
			vendors:   postgres.NewVendorRepository(pool, a.logger),
			menuItems: postgres.NewMenuItemRepository(pool),
			close:     pool.Close,
		}, nil
	case "file":
		return &catalog{
			vendors: file.NewVendorRepository(a.cfg.Catalog.File, a.logger),
			close:   func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", a.cfg.Catalog.Source)
	}
}

func weightsFromConfig(w models.WeightsConfig) ranking.Weights {
	return ranking.Weights{
		Distance: w.Distance,
		Rating:   w.Rating,
		Keyword:  w.Keyword,
		Social:   w.Social,
	}
}

// newService builds the recommender over the configured catalog and sink. The
// returned func releases both.
func (a *app) newService(ctx context.Context, console io.Writer) (*recommender.Service, func(), error) {
	engine, err := ranking.NewEngine(weightsFromConfig(a.cfg.Scoring.Weights))
	if err != nil {
		return nil, nil, err
	}

	cat, err := a.openCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}

	dest, err := output.New(ctx, a.cfg, console, a.logger)
	if err != nil {
		cat.close()
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}

	svc := recommender.NewService(cat.vendors, engine, dest, a.logger, recommender.Config{
		QueryTimeout:    a.cfg.QueryTimeout,
		DefaultLocation: a.cfg.UserLocation,
		DefaultLimit:    a.cfg.ResultLimit,
	})
	cleanup := func() {
		if err := dest.Close(); err != nil {
			a.logger.Error("closing output", "error", err)
		}
		cat.close()
	}
	return svc, cleanup, nil
}
