package models

type SearchType string

func (t SearchType) Valid() bool {
	for _, known := range AllSearchTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SearchFilters are the hard constraints and preferences of a search.
// MaxDistance is in metres and must be positive.
type SearchFilters struct {
	MaxDistance float64   `json:"max_distance"`
	MaxPrice    *float64  `json:"max_price,omitempty"`
	MinRating   *float64  `json:"min_rating,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
}

type FoodIntent struct {
	DisplayText string        `json:"display_text"`
	Emoji       string        `json:"emoji"`
	SearchType  SearchType    `json:"search_type"`
	Filters     SearchFilters `json:"filters"`
}
