package ranking

import (
	"github.com/chrisdamba/foodmatch/internal/geo"
	"github.com/chrisdamba/foodmatch/internal/models"
)

// AverageItemPrice approximates what one item costs per price tier step. The
// max-price filter compares PriceTier*AverageItemPrice against the ceiling; it
// is a coarse band check, not a currency conversion.
const AverageItemPrice = 12.0

// Candidate is a vendor that passed every hard filter.
type Candidate struct {
	Vendor   models.Vendor
	Distance float64 // metres from the user
}

// FilterStats counts why vendors were dropped.
type FilterStats struct {
	Considered        int
	InvalidCoordinate int
	TooFar            int
	Closed            int
	CategoryMismatch  int
	BelowMinRating    int
	AboveMaxPrice     int
	Kept              int
}

func (s FilterStats) Rejected() int {
	return s.Considered - s.Kept
}

// FilterCandidates keeps the vendors that satisfy all hard constraints of the
// intent. The catalog is only read.
func FilterCandidates(catalog []models.Vendor, user models.Location, intent models.FoodIntent) ([]Candidate, FilterStats) {
	f := intent.Filters
	stats := FilterStats{Considered: len(catalog)}
	candidates := make([]Candidate, 0, len(catalog))

	for i := range catalog {
		v := &catalog[i]
		if !v.Location.Valid() {
			stats.InvalidCoordinate++
			continue
		}
		distance := geo.Distance(user, v.Location)
		switch {
		case distance > f.MaxDistance:
			stats.TooFar++
		case !v.IsOpen:
			stats.Closed++
		case f.Category != nil && v.Category != *f.Category:
			stats.CategoryMismatch++
		case f.MinRating != nil && v.Rating < *f.MinRating:
			stats.BelowMinRating++
		case f.MaxPrice != nil && float64(v.PriceTier)*AverageItemPrice > *f.MaxPrice:
			stats.AboveMaxPrice++
		default:
			candidates = append(candidates, Candidate{Vendor: *v, Distance: distance})
		}
	}

	stats.Kept = len(candidates)
	return candidates, stats
}
