package models

const (
	CategoryRestaurants Category = "restaurants"
	CategoryGroceries   Category = "groceries"
	CategoryConvenience Category = "convenience"
	CategoryCafes       Category = "cafes"
	CategoryDesserts    Category = "desserts"
	CategoryAlcohol     Category = "alcohol"

	PriceBudget   PriceTier = 1
	PriceModerate PriceTier = 2
	PricePremium  PriceTier = 3

	WaitNone  WaitStatus = "no_wait"
	WaitShort WaitStatus = "short_wait"
	WaitLong  WaitStatus = "long_wait"

	SearchCoffee         SearchType = "coffee"
	SearchHighProtein    SearchType = "high_protein"
	SearchGroceries      SearchType = "groceries"
	SearchQuickBreakfast SearchType = "quick_breakfast"
	SearchHealthyLunch   SearchType = "healthy_lunch"
	SearchCustom         SearchType = "custom"

	// DefaultMaxDistance is the search radius in metres when none is given.
	DefaultMaxDistance = 2000.0
	MinRating          = 0.0
	MaxRating          = 5.0
)

var AllCategories = []Category{
	CategoryRestaurants,
	CategoryGroceries,
	CategoryConvenience,
	CategoryCafes,
	CategoryDesserts,
	CategoryAlcohol,
}

var AllSearchTypes = []SearchType{
	SearchCoffee,
	SearchHighProtein,
	SearchGroceries,
	SearchQuickBreakfast,
	SearchHealthyLunch,
	SearchCustom,
}
