package intent

import "github.com/chrisdamba/foodmatch/internal/models"

type template struct {
	displayText string
	emoji       string
	category    models.Category
	maxDistance float64
	minRating   float64
	keywords    []string
}

// templates are the fixed filter presets behind the suggested searches.
var templates = map[models.SearchType]template{
	models.SearchCoffee: {
		displayText: "Coffee",
		emoji:       "☕",
		category:    models.CategoryCafes,
		maxDistance: 1500,
		keywords:    []string{"coffee"},
	},
	models.SearchHighProtein: {
		displayText: "High protein",
		emoji:       "💪",
		maxDistance: 2000,
		keywords:    []string{"protein"},
	},
	models.SearchGroceries: {
		displayText: "Groceries",
		emoji:       "🛒",
		category:    models.CategoryGroceries,
		maxDistance: 3000,
	},
	models.SearchQuickBreakfast: {
		displayText: "Quick breakfast",
		emoji:       "🥐",
		maxDistance: 1200,
		keywords:    []string{"breakfast"},
	},
	models.SearchHealthyLunch: {
		displayText: "Healthy lunch",
		emoji:       "🥗",
		maxDistance: 2000,
		minRating:   4.0,
		keywords:    []string{"healthy"},
	},
}

const (
	customDisplayText = "Custom search"
	customEmoji       = "🔍"
)

// phrases map free text onto a suggested search. Order matters: the first
// entry whose phrase occurs in the text wins.
var phrases = []struct {
	phrase     string
	searchType models.SearchType
}{
	{"coffee", models.SearchCoffee},
	{"espresso", models.SearchCoffee},
	{"latte", models.SearchCoffee},
	{"protein", models.SearchHighProtein},
	{"grocer", models.SearchGroceries},
	{"breakfast", models.SearchQuickBreakfast},
	{"healthy", models.SearchHealthyLunch},
	{"salad", models.SearchHealthyLunch},
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "any": {}, "at": {}, "for": {}, "find": {}, "food": {},
	"get": {}, "i": {}, "in": {}, "me": {}, "near": {}, "nearby": {}, "of": {}, "or": {},
	"place": {}, "places": {}, "some": {}, "something": {}, "the": {}, "to": {},
	"want": {}, "where": {}, "with": {},
}
