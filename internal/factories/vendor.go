package factories

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

type categoryProfile struct {
	weight   float64
	suffixes []string
	cuisines []string
	tags     []string
	tiers    []models.PriceTier
}

var categoryProfiles = map[models.Category]categoryProfile{
	models.CategoryRestaurants: {
		weight:   0.45,
		suffixes: []string{"Kitchen", "Grill", "Eatery", "Bistro", "Noodle Bar", "Taqueria"},
		cuisines: []string{"American", "Mexican", "Japanese", "Thai", "Indian", "Mediterranean", "Korean", "Italian", "Vietnamese"},
		tags:     []string{"High protein", "Vegan", "Vegetarian", "Gluten free", "Healthy", "Late night", "Breakfast", "Halal", "Spicy"},
		tiers:    []models.PriceTier{models.PriceBudget, models.PriceModerate, models.PriceModerate, models.PricePremium},
	},
	models.CategoryCafes: {
		weight:   0.2,
		suffixes: []string{"Coffee", "Cafe", "Espresso Bar", "Roasters"},
		cuisines: []string{"Coffee", "Bakery", "Tea"},
		tags:     []string{"Coffee", "Breakfast", "Pastries", "Study spot", "Vegan", "Matcha"},
		tiers:    []models.PriceTier{models.PriceBudget, models.PriceModerate},
	},
	models.CategoryGroceries: {
		weight:   0.1,
		suffixes: []string{"Market", "Grocer", "Co-op", "Foods"},
		cuisines: []string{"Grocery", "Organic", "International"},
		tags:     []string{"Produce", "Organic", "Bulk", "Healthy", "High protein"},
		tiers:    []models.PriceTier{models.PriceBudget, models.PriceModerate},
	},
	models.CategoryConvenience: {
		weight:   0.1,
		suffixes: []string{"Mart", "Express", "Corner Store", "Quick Stop"},
		cuisines: []string{"Convenience"},
		tags:     []string{"Snacks", "Late night", "Drinks", "Quick"},
		tiers:    []models.PriceTier{models.PriceBudget},
	},
	models.CategoryDesserts: {
		weight:   0.1,
		suffixes: []string{"Creamery", "Bakeshop", "Donuts", "Sweets"},
		cuisines: []string{"Ice cream", "Bakery", "Boba"},
		tags:     []string{"Sweet", "Vegan", "Late night", "Gluten free"},
		tiers:    []models.PriceTier{models.PriceBudget, models.PriceModerate},
	},
	models.CategoryAlcohol: {
		weight:   0.05,
		suffixes: []string{"Taproom", "Wine Bar", "Pub", "Brewing"},
		cuisines: []string{"Bar", "Brewery", "Wine"},
		tags:     []string{"Happy hour", "Late night", "Trivia night"},
		tiers:    []models.PriceTier{models.PriceModerate, models.PricePremium},
	},
}

var waitStatuses = []models.WaitStatus{"", models.WaitNone, models.WaitShort, models.WaitLong}

// VendorFactory generates a synthetic campus catalog. A factory built from the
// same seed produces the same vendors apart from their ids.
type VendorFactory struct {
	fake      faker.Faker
	rng       *rand.Rand
	menu      *MenuItemFactory
	now       time.Time
	slugCache sync.Map // to keep vendor names unique
}

func NewVendorFactory(seed int64, now time.Time) *VendorFactory {
	rng := rand.New(rand.NewSource(seed))
	fake := faker.NewWithSeed(rand.NewSource(seed))
	return &VendorFactory{
		fake: fake,
		rng:  rng,
		menu: newMenuItemFactory(fake, rng),
		now:  now,
	}
}

func (vf *VendorFactory) CreateVendor(config *models.SeedConfig) *models.Vendor {
	category := vf.pickCategory()
	profile := categoryProfiles[category]

	// spread vendors uniformly over a disc around the campus centre
	latRange := config.CampusRadius / 111.0
	distance := math.Sqrt(vf.rng.Float64())
	bearing := vf.rng.Float64() * 2 * math.Pi
	lat := config.CampusLat + distance*latRange*math.Sin(bearing)
	lon := config.CampusLon + distance*latRange*math.Cos(bearing)/math.Cos(config.CampusLat*math.Pi/180.0)

	vendor := &models.Vendor{
		ID:          cuid.New(),
		Name:        vf.createUniqueName(profile),
		Category:    category,
		Cuisine:     pick(vf.rng, profile.cuisines),
		Location:    models.Location{Lat: lat, Lon: lon},
		PriceTier:   pick(vf.rng, profile.tiers),
		Rating:      math.Round((2.5+vf.rng.Float64()*2.5)*10) / 10,
		DeliveryFee: math.Round(vf.rng.Float64()*500) / 100,
		IsOpen:      vf.rng.Float64() >= config.ClosedRatio,
		Tags:        pickSome(vf.rng, profile.tags, 1, 3),
		WaitStatus:  pick(vf.rng, waitStatuses),
		SocialProof: vf.createSocialProof(),
	}

	itemCount := config.MenuItemsMin
	if config.MenuItemsMax > config.MenuItemsMin {
		itemCount += vf.rng.Intn(config.MenuItemsMax - config.MenuItemsMin + 1)
	}
	for i := 0; i < itemCount; i++ {
		vendor.MenuItems = append(vendor.MenuItems, vf.menu.CreateMenuItem(vendor))
	}
	return vendor
}

func (vf *VendorFactory) pickCategory() models.Category {
	r := vf.rng.Float64()
	cumulative := 0.0
	for _, c := range models.AllCategories {
		cumulative += categoryProfiles[c].weight
		if r < cumulative {
			return c
		}
	}
	return models.CategoryRestaurants
}

func (vf *VendorFactory) createSocialProof() *models.SocialProof {
	if vf.rng.Float64() < 0.4 {
		return nil
	}
	proof := &models.SocialProof{FriendsLoved: vf.rng.Intn(9)}
	visits := vf.rng.Intn(4)
	for i := 0; i < visits; i++ {
		proof.RecentVisits = append(proof.RecentVisits, models.RecentVisit{
			FriendName: vf.fake.Person().FirstName(),
			VisitedAt:  vf.now.Add(-time.Duration(vf.rng.Intn(14*24)) * time.Hour),
		})
	}
	return proof
}

func (vf *VendorFactory) createUniqueName(profile categoryProfile) string {
	base := fmt.Sprintf("%s's %s", vf.fake.Person().LastName(), pick(vf.rng, profile.suffixes))
	base = strings.TrimSpace(base)

	name := base
	counter := 2
	for {
		if _, exists := vf.slugCache.LoadOrStore(strings.ToLower(name), true); !exists {
			return name
		}
		name = fmt.Sprintf("%s %d", base, counter)
		counter++
	}
}

func pick[T any](rng *rand.Rand, options []T) T {
	return options[rng.Intn(len(options))]
}

// pickSome returns between minN and maxN distinct entries in input order.
func pickSome(rng *rand.Rand, options []string, minN, maxN int) []string {
	n := minN + rng.Intn(maxN-minN+1)
	if n > len(options) {
		n = len(options)
	}
	chosen := rng.Perm(len(options))[:n]
	picked := make([]bool, len(options))
	for _, i := range chosen {
		picked[i] = true
	}
	out := make([]string, 0, n)
	for i, opt := range options {
		if picked[i] {
			out = append(out, opt)
		}
	}
	return out
}
