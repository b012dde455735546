package ranking

import (
	"sort"

	"github.com/chrisdamba/foodmatch/internal/geo"
	"github.com/chrisdamba/foodmatch/internal/models"
)

// Less orders scored candidates: score descending, then rating descending,
// distance ascending, name ascending and finally id ascending.
func Less(a, b ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Vendor.Rating != b.Vendor.Rating {
		return a.Vendor.Rating > b.Vendor.Rating
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	if a.Vendor.Name != b.Vendor.Name {
		return a.Vendor.Name < b.Vendor.Name
	}
	return a.Vendor.ID < b.Vendor.ID
}

// RankResults sorts the scored candidates and renders them as results. The
// input slice is sorted in place. w is only used to phrase match reasons.
func RankResults(scored []ScoredCandidate, w Weights) []models.FoodResult {
	sort.SliceStable(scored, func(i, j int) bool {
		return Less(scored[i], scored[j])
	})

	results := make([]models.FoodResult, 0, len(scored))
	for _, sc := range scored {
		walk := geo.WalkTimeMinutes(sc.Distance)
		results = append(results, models.FoodResult{
			Vendor:      sc.Vendor,
			MenuItem:    sc.MenuItem,
			Distance:    sc.Distance,
			WalkTime:    walk,
			MatchScore:  sc.Score,
			MatchReason: MatchReason(sc, walk, w),
		})
	}
	return results
}
