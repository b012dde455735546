// Package recommender answers recommendation requests: it parses the intent,
// loads nearby vendors from the catalog, ranks them and publishes the ranked
// results to the configured output.
package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/chrisdamba/foodmatch/internal/intent"
	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/chrisdamba/foodmatch/internal/output"
	"github.com/chrisdamba/foodmatch/internal/ranking"
	"github.com/chrisdamba/foodmatch/internal/repositories"
	"github.com/lucsky/cuid"
	"golang.org/x/sync/errgroup"
)

// Request is one search. A nil Location falls back to the configured user
// location and a zero Limit to the configured result limit.
type Request struct {
	intent.Query `yaml:",inline"`
	Location     *models.Location `json:"location,omitempty" yaml:"location,omitempty"`
	Limit        int              `json:"limit,omitempty" yaml:"limit,omitempty"`
}

type Recommendation struct {
	ID          string              `json:"id"`
	Intent      models.FoodIntent   `json:"intent"`
	Location    models.Location     `json:"location"`
	Results     []models.FoodResult `json:"results"`
	Stats       ranking.FilterStats `json:"stats"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type Config struct {
	QueryTimeout    time.Duration
	DefaultLocation models.Location
	DefaultLimit    int
}

type Service struct {
	catalog repositories.VendorFinder
	engine  *ranking.Engine
	output  output.Destination
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

// NewService wires a service. out may be nil, in which case nothing is
// published.
func NewService(catalog repositories.VendorFinder, engine *ranking.Engine, out output.Destination, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		catalog: catalog,
		engine:  engine,
		output:  out,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *Service) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	foodIntent, loc, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := s.fetchContext(ctx)
	defer cancel()
	vendors, err := s.catalog.FindNearby(fetchCtx, loc, foodIntent.Filters.MaxDistance)
	if err != nil {
		return nil, fmt.Errorf("fetch nearby vendors: %w", err)
	}

	rec, err := s.rank(foodIntent, loc, vendors, s.limit(req))
	if err != nil {
		return nil, err
	}
	if err := s.publish(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecommendBatch loads the whole catalog once and ranks every request against
// that snapshot concurrently. Recommendations come back in request order. Any
// invalid request fails the batch before the catalog is read.
func (s *Service) RecommendBatch(ctx context.Context, reqs []Request) ([]*Recommendation, error) {
	intents := make([]models.FoodIntent, len(reqs))
	locations := make([]models.Location, len(reqs))
	for i, req := range reqs {
		foodIntent, loc, err := s.prepare(req)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		intents[i], locations[i] = foodIntent, loc
	}
	if len(reqs) == 0 {
		return nil, nil
	}

	fetchCtx, cancel := s.fetchContext(ctx)
	catalog, err := s.catalog.GetAll(fetchCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s.logger.Debug("catalog snapshot loaded", "vendors", len(catalog), "requests", len(reqs))

	recs := make([]*Recommendation, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range reqs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := s.rank(intents[i], locations[i], catalog, s.limit(reqs[i]))
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rec := range recs {
		if err := s.publish(rec); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (s *Service) prepare(req Request) (models.FoodIntent, models.Location, error) {
	foodIntent, err := intent.Parse(req.Query)
	if err != nil {
		return models.FoodIntent{}, models.Location{}, err
	}
	loc := s.cfg.DefaultLocation
	if req.Location != nil {
		loc = *req.Location
	}
	if !loc.Valid() {
		return models.FoodIntent{}, models.Location{}, fmt.Errorf("%w: user location %s out of range", models.ErrInvalidIntent, loc)
	}
	if req.Limit < 0 {
		return models.FoodIntent{}, models.Location{}, fmt.Errorf("%w: negative limit %d", models.ErrInvalidIntent, req.Limit)
	}
	return foodIntent, loc, nil
}

func (s *Service) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.QueryTimeout)
}

func (s *Service) limit(req Request) int {
	if req.Limit > 0 {
		return req.Limit
	}
	return s.cfg.DefaultLimit
}

func (s *Service) rank(foodIntent models.FoodIntent, loc models.Location, vendors []models.Vendor, limit int) (*Recommendation, error) {
	results, stats, err := s.engine.RankWithStats(foodIntent, loc, vendors)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("candidates filtered",
		"search_type", foodIntent.SearchType,
		"considered", stats.Considered,
		"kept", stats.Kept,
		"too_far", stats.TooFar,
		"closed", stats.Closed,
		"category_mismatch", stats.CategoryMismatch,
		"below_min_rating", stats.BelowMinRating,
		"above_max_price", stats.AboveMaxPrice,
		"invalid_coordinate", stats.InvalidCoordinate,
	)

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return &Recommendation{
		ID:          cuid.New(),
		Intent:      foodIntent,
		Location:    loc,
		Results:     results,
		Stats:       stats,
		GeneratedAt: s.now(),
	}, nil
}

func (s *Service) publish(rec *Recommendation) error {
	if s.output == nil {
		return nil
	}
	for i, r := range rec.Results {
		event := output.NewRankedResultEvent(rec.ID, rec.Intent, rec.Location, i+1, r, rec.GeneratedAt)
		msg, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode ranked result: %w", err)
		}
		if err := s.output.WriteMessage(output.TopicRankedResults, msg); err != nil {
			return fmt.Errorf("publish ranked results for %s: %w", rec.ID, err)
		}
	}
	s.logger.Info("recommendation published", "id", rec.ID, "search_type", rec.Intent.SearchType, "results", len(rec.Results))
	return nil
}
