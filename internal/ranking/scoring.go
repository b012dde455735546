package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/chrisdamba/foodmatch/internal/models"
)

// socialSaturation is the number of friends at which social proof earns full credit.
const socialSaturation = 5.0

// Weights are the share of the 100 point score each dimension can earn.
// Defaults are a starting point pending calibration against real usage.
type Weights struct {
	Distance float64
	Rating   float64
	Keyword  float64
	Social   float64
}

func DefaultWeights() Weights {
	return Weights{Distance: 0.35, Rating: 0.25, Keyword: 0.20, Social: 0.20}
}

func (w Weights) Validate() error {
	for _, v := range []float64{w.Distance, w.Rating, w.Keyword, w.Social} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weights must be finite: %+v", w)
		}
	}
	if w.Distance < 0 || w.Rating < 0 || w.Keyword < 0 || w.Social < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if sum := w.Distance + w.Rating + w.Keyword + w.Social; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %.4f", sum)
	}
	return nil
}

// Breakdown holds the points each dimension contributed, already weighted.
type Breakdown struct {
	Distance float64
	Rating   float64
	Keyword  float64
	Social   float64

	// MatchedKeywords lists the intent keywords found on the vendor.
	MatchedKeywords []string
	// MatchedLabel is the vendor tag or cuisine that the first keyword hit.
	MatchedLabel string
}

func (b Breakdown) Total() float64 {
	return b.Distance + b.Rating + b.Keyword + b.Social
}

// Score rounds the breakdown to an integer in [0,100].
func (b Breakdown) Score() int {
	score := int(math.Round(b.Total()))
	return max(0, min(100, score))
}

// ScoredCandidate is a candidate together with its score.
type ScoredCandidate struct {
	Candidate
	Breakdown Breakdown
	Score     int
	MenuItem  *models.MenuItem
}

// Score computes the weighted sub-scores of one candidate.
func (w Weights) Score(c Candidate, f models.SearchFilters) Breakdown {
	b := Breakdown{}

	proximity := 0.0
	if f.MaxDistance > 0 {
		proximity = clamp01(1 - c.Distance/f.MaxDistance)
	}
	b.Distance = proximity * 100 * w.Distance

	b.Rating = clamp01(c.Vendor.Rating/models.MaxRating) * 100 * w.Rating

	if len(f.Keywords) == 0 {
		b.Keyword = 100 * w.Keyword
	} else {
		b.MatchedKeywords, b.MatchedLabel = matchKeywords(&c.Vendor, f.Keywords)
		b.Keyword = float64(len(b.MatchedKeywords)) / float64(len(f.Keywords)) * 100 * w.Keyword
	}

	b.Social = math.Min(float64(c.Vendor.FriendsLoved())/socialSaturation, 1) * 100 * w.Social
	return b
}

// matchKeywords reports which keywords occur, case-insensitively, in the
// vendor's name, cuisine or tags, and the label the first hit came from.
// Tags are preferred over cuisine and name as the label.
func matchKeywords(v *models.Vendor, keywords []string) ([]string, string) {
	name := strings.ToLower(v.Name)
	cuisine := strings.ToLower(v.Cuisine)
	tags := make([]string, len(v.Tags))
	for i, tag := range v.Tags {
		tags[i] = strings.ToLower(tag)
	}

	var matched []string
	label := ""
	for _, kw := range keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		hit := ""
		for i, tag := range tags {
			if strings.Contains(tag, needle) {
				hit = v.Tags[i]
				break
			}
		}
		if hit == "" && strings.Contains(cuisine, needle) {
			hit = v.Cuisine
		}
		if hit == "" && strings.Contains(name, needle) {
			hit = kw
		}
		if hit == "" {
			continue
		}
		matched = append(matched, kw)
		if label == "" {
			label = hit
		}
	}
	return matched, label
}

// bestMenuItem returns the menu item with the most keyword hits across its
// name, description and tags. Ties go to the cheaper item, then the name.
func bestMenuItem(items []models.MenuItem, keywords []string) *models.MenuItem {
	if len(items) == 0 || len(keywords) == 0 {
		return nil
	}

	type hit struct {
		idx   int
		count int
	}
	var hits []hit
	for i := range items {
		haystack := strings.ToLower(items[i].Name + " " + items[i].Description + " " + strings.Join(items[i].Tags, " "))
		count := 0
		for _, kw := range keywords {
			if needle := strings.ToLower(strings.TrimSpace(kw)); needle != "" && strings.Contains(haystack, needle) {
				count++
			}
		}
		if count > 0 {
			hits = append(hits, hit{idx: i, count: count})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	sort.Slice(hits, func(i, j int) bool {
		a, b := items[hits[i].idx], items[hits[j].idx]
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.Name < b.Name
	})
	item := items[hits[0].idx]
	return &item
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
