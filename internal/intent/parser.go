// Package intent turns what the user asked for into a canonical FoodIntent.
package intent

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/chrisdamba/foodmatch/internal/models"
)

// ErrInvalidIntent is returned, wrapped, for malformed filters.
var ErrInvalidIntent = models.ErrInvalidIntent

// FilterInput is a caller-supplied filter set. Nil fields are unset.
type FilterInput struct {
	MaxDistance *float64         `json:"max_distance,omitempty" yaml:"max_distance,omitempty"`
	MaxPrice    *float64         `json:"max_price,omitempty" yaml:"max_price,omitempty"`
	MinRating   *float64         `json:"min_rating,omitempty" yaml:"min_rating,omitempty"`
	Category    *models.Category `json:"category,omitempty" yaml:"category,omitempty"`
	Keywords    []string         `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Query is the raw description of a search: a selected suggestion (Type),
// free text, a structured filter set, or a mix of them.
type Query struct {
	Type    models.SearchType `json:"type,omitempty" yaml:"type,omitempty"`
	Text    string            `json:"text,omitempty" yaml:"text,omitempty"`
	Emoji   string            `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Filters *FilterInput      `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// Parse normalizes q into a FoodIntent.
//
// A predefined search type starts from its template and any explicit filter
// overrides the template field by field. A custom search takes its filters
// verbatim with unset fields defaulted. Free text without a type is mapped onto
// a suggestion when a known phrase occurs in it, otherwise it becomes a custom
// search keyed on the words of the text.
func Parse(q Query) (models.FoodIntent, error) {
	searchType := models.SearchType(strings.ToLower(strings.TrimSpace(string(q.Type))))
	text := strings.TrimSpace(q.Text)

	if searchType == "" {
		searchType = inferType(text)
		if searchType == models.SearchCustom && text != "" && (q.Filters == nil || q.Filters.Keywords == nil) {
			words := textKeywords(text)
			if q.Filters == nil {
				q.Filters = &FilterInput{}
			} else {
				copied := *q.Filters
				q.Filters = &copied
			}
			q.Filters.Keywords = words
		}
	}
	if !searchType.Valid() {
		return models.FoodIntent{}, fmt.Errorf("%w: unknown search type %q", ErrInvalidIntent, q.Type)
	}

	intent := models.FoodIntent{
		SearchType: searchType,
		Filters:    models.SearchFilters{MaxDistance: models.DefaultMaxDistance},
	}

	if tpl, ok := templates[searchType]; ok {
		intent.DisplayText = tpl.displayText
		intent.Emoji = tpl.emoji
		intent.Filters = tpl.filters()
	} else {
		intent.DisplayText = customDisplayText
		intent.Emoji = customEmoji
		if text != "" {
			intent.DisplayText = text
		}
	}
	if emoji := strings.TrimSpace(q.Emoji); emoji != "" {
		intent.Emoji = emoji
	}

	if q.Filters != nil {
		if err := apply(&intent.Filters, q.Filters); err != nil {
			return models.FoodIntent{}, err
		}
	}
	if err := Validate(intent.Filters); err != nil {
		return models.FoodIntent{}, err
	}
	return intent, nil
}

// Validate checks the invariants of a filter set.
func Validate(f models.SearchFilters) error {
	if math.IsNaN(f.MaxDistance) || f.MaxDistance <= 0 {
		return fmt.Errorf("%w: max distance must be positive, got %v", ErrInvalidIntent, f.MaxDistance)
	}
	if f.MaxPrice != nil && (math.IsNaN(*f.MaxPrice) || *f.MaxPrice <= 0) {
		return fmt.Errorf("%w: max price must be positive, got %v", ErrInvalidIntent, *f.MaxPrice)
	}
	if f.MinRating != nil && (math.IsNaN(*f.MinRating) || *f.MinRating < models.MinRating || *f.MinRating > models.MaxRating) {
		return fmt.Errorf("%w: min rating must be within [0,5], got %v", ErrInvalidIntent, *f.MinRating)
	}
	if f.Category != nil && !f.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidIntent, *f.Category)
	}
	return nil
}

func (t template) filters() models.SearchFilters {
	f := models.SearchFilters{MaxDistance: t.maxDistance}
	if t.category != "" {
		category := t.category
		f.Category = &category
	}
	if t.minRating > 0 {
		minRating := t.minRating
		f.MinRating = &minRating
	}
	if len(t.keywords) > 0 {
		f.Keywords = append([]string(nil), t.keywords...)
	}
	return f
}

func apply(dst *models.SearchFilters, in *FilterInput) error {
	if in.MaxDistance != nil {
		dst.MaxDistance = *in.MaxDistance
	}
	if in.MaxPrice != nil {
		maxPrice := *in.MaxPrice
		dst.MaxPrice = &maxPrice
	}
	if in.MinRating != nil {
		minRating := *in.MinRating
		dst.MinRating = &minRating
	}
	if in.Category != nil {
		category, err := models.ParseCategory(string(*in.Category))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidIntent, err)
		}
		dst.Category = &category
	}
	if in.Keywords != nil {
		keywords, err := normalizeKeywords(in.Keywords)
		if err != nil {
			return err
		}
		dst.Keywords = keywords
	}
	return nil
}

// normalizeKeywords trims entries and drops blanks and case-insensitive
// duplicates. A non-empty list made only of blanks is rejected.
func normalizeKeywords(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, k)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: keywords are all blank", ErrInvalidIntent)
	}
	return keywords, nil
}

func inferType(text string) models.SearchType {
	lower := strings.ToLower(text)
	if lower == "" {
		return models.SearchCustom
	}
	for _, p := range phrases {
		if strings.Contains(lower, p.phrase) {
			return p.searchType
		}
	}
	return models.SearchCustom
}

func textKeywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-'
	})
	var words []string
	for _, w := range fields {
		w = strings.Trim(w, "-")
		if len([]rune(w)) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}
