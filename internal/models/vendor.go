package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Category string

func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts any casing and surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// PriceTier is the coarse price band of a vendor, written as "$", "$$" or "$$$".
type PriceTier int

func (p PriceTier) Valid() bool {
	return p >= PriceBudget && p <= PricePremium
}

func (p PriceTier) String() string {
	if !p.Valid() {
		return "?"
	}
	return strings.Repeat("$", int(p))
}

func (p PriceTier) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid price tier %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *PriceTier) UnmarshalText(text []byte) error {
	tier, err := ParsePriceTier(string(text))
	if err != nil {
		return err
	}
	*p = tier
	return nil
}

// UnmarshalJSON accepts both "$$" and 2.
func (p *PriceTier) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	return p.UnmarshalText([]byte(s))
}

// ParsePriceTier accepts the dollar form or the numeric form ("1".."3").
func ParsePriceTier(s string) (PriceTier, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "$", "1":
		return PriceBudget, nil
	case "$$", "2":
		return PriceModerate, nil
	case "$$$", "3":
		return PricePremium, nil
	}
	return 0, fmt.Errorf("unknown price tier %q", s)
}

type WaitStatus string

type RecentVisit struct {
	FriendName string    `json:"friend_name"`
	VisitedAt  time.Time `json:"visited_at"`
}

// SocialProof summarises what the user's friends think of a vendor.
type SocialProof struct {
	FriendsLoved int           `json:"friends_loved"`
	RecentVisits []RecentVisit `json:"recent_visits,omitempty"`
}

type Vendor struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    Category     `json:"category"`
	Cuisine     string       `json:"cuisine"`
	Location    Location     `json:"location"`
	PriceTier   PriceTier    `json:"price_tier"`
	Rating      float64      `json:"rating"`
	DeliveryFee float64      `json:"delivery_fee"`
	IsOpen      bool         `json:"is_open"`
	Tags        []string     `json:"tags,omitempty"`
	WaitStatus  WaitStatus   `json:"wait_status,omitempty"`
	SocialProof *SocialProof `json:"social_proof,omitempty"`
	MenuItems   []MenuItem   `json:"menu_items,omitempty"`
}

// FriendsLoved is zero when the vendor carries no social data.
func (v *Vendor) FriendsLoved() int {
	if v.SocialProof == nil || v.SocialProof.FriendsLoved < 0 {
		return 0
	}
	return v.SocialProof.FriendsLoved
}

// Validate checks the invariants the ranking engine relies on.
func (v *Vendor) Validate() error {
	switch {
	case strings.TrimSpace(v.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidVendor)
	case !v.Location.Valid():
		return fmt.Errorf("%w %s: coordinate %s out of range", ErrInvalidVendor, v.ID, v.Location)
	case math.IsNaN(v.Rating) || v.Rating < MinRating || v.Rating > MaxRating:
		return fmt.Errorf("%w %s: rating %.2f outside [0,5]", ErrInvalidVendor, v.ID, v.Rating)
	case !v.Category.Valid():
		return fmt.Errorf("%w %s: unknown category %q", ErrInvalidVendor, v.ID, v.Category)
	case !v.PriceTier.Valid():
		return fmt.Errorf("%w %s: price tier %d outside 1..3", ErrInvalidVendor, v.ID, int(v.PriceTier))
	}
	return nil
}
