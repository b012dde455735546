package models

// FoodResult is one ranked recommendation. Slices of results are in rank order.
type FoodResult struct {
	Vendor      Vendor    `json:"vendor"`
	MenuItem    *MenuItem `json:"menu_item,omitempty"`
	Distance    float64   `json:"distance"`  // metres
	WalkTime    int       `json:"walk_time"` // minutes
	MatchScore  int       `json:"match_score"`
	MatchReason string    `json:"match_reason"`
}
