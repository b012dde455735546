// Package ranking turns a vendor catalog into an ordered list of
// recommendations for one intent and one user location.
//
// The pipeline is filter, score, sort. Every step is a pure function of its
// inputs so an Engine can serve concurrent queries without locking.
package ranking

import (
	"fmt"

	"github.com/chrisdamba/foodmatch/internal/models"
)

type Engine struct {
	weights Weights
}

func NewEngine(weights Weights) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring weights: %w", err)
	}
	return &Engine{weights: weights}, nil
}

var defaultEngine = &Engine{weights: DefaultWeights()}

// Rank ranks the catalog with the default weights.
func Rank(intent models.FoodIntent, userLocation models.Location, catalog []models.Vendor) ([]models.FoodResult, error) {
	return defaultEngine.Rank(intent, userLocation, catalog)
}

func (e *Engine) Rank(intent models.FoodIntent, userLocation models.Location, catalog []models.Vendor) ([]models.FoodResult, error) {
	results, _, err := e.RankWithStats(intent, userLocation, catalog)
	return results, err
}

// RankWithStats is Rank plus the per-reason counts of filtered out vendors.
// On error no results are returned.
func (e *Engine) RankWithStats(intent models.FoodIntent, userLocation models.Location, catalog []models.Vendor) ([]models.FoodResult, FilterStats, error) {
	if !(intent.Filters.MaxDistance > 0) {
		return nil, FilterStats{}, fmt.Errorf("%w: max distance must be positive, got %v", models.ErrInvalidIntent, intent.Filters.MaxDistance)
	}
	if !userLocation.Valid() {
		return nil, FilterStats{}, fmt.Errorf("%w: user location %s out of range", models.ErrInvalidIntent, userLocation)
	}

	candidates, stats := FilterCandidates(catalog, userLocation, intent)
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		breakdown := e.weights.Score(c, intent.Filters)
		scored = append(scored, ScoredCandidate{
			Candidate: c,
			Breakdown: breakdown,
			Score:     breakdown.Score(),
			MenuItem:  bestMenuItem(c.Vendor.MenuItems, intent.Filters.Keywords),
		})
	}
	return RankResults(scored, e.weights), stats, nil
}
