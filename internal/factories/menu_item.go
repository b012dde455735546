package factories

import (
	"math"
	"math/rand"

	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

type dish struct {
	name string
	tags []string
}

var dishesByCuisine = map[string][]dish{
	"American":      {{"Grilled Chicken Plate", []string{"High protein"}}, {"Cheeseburger", nil}, {"Cobb Salad", []string{"Healthy", "High protein"}}, {"Veggie Burger", []string{"Vegetarian"}}},
	"Mexican":       {{"Carne Asada Burrito", []string{"High protein"}}, {"Bean Tacos", []string{"Vegan"}}, {"Chicken Quesadilla", nil}, {"Breakfast Burrito", []string{"Breakfast"}}},
	"Japanese":      {{"Salmon Poke Bowl", []string{"High protein", "Healthy"}}, {"Tonkotsu Ramen", nil}, {"Vegetable Sushi Roll", []string{"Vegan"}}, {"Miso Soup", []string{"Vegan"}}},
	"Thai":          {{"Pad Thai", nil}, {"Green Curry Tofu", []string{"Vegan", "Spicy"}}, {"Basil Chicken", []string{"High protein", "Spicy"}}},
	"Indian":        {{"Chicken Tikka Masala", []string{"High protein"}}, {"Chana Masala", []string{"Vegan"}}, {"Paneer Butter Masala", []string{"Vegetarian"}}},
	"Mediterranean": {{"Falafel Wrap", []string{"Vegan"}}, {"Chicken Shawarma Bowl", []string{"High protein", "Healthy"}}, {"Greek Salad", []string{"Healthy", "Vegetarian"}}},
	"Korean":        {{"Bibimbap", []string{"Healthy"}}, {"Spicy Pork Bulgogi", []string{"High protein", "Spicy"}}, {"Tofu Soondubu", []string{"Spicy"}}},
	"Italian":       {{"Margherita Pizza", []string{"Vegetarian"}}, {"Chicken Parm", []string{"High protein"}}, {"Minestrone", []string{"Vegan", "Healthy"}}},
	"Vietnamese":    {{"Beef Pho", []string{"High protein"}}, {"Tofu Banh Mi", []string{"Vegan"}}, {"Fresh Spring Rolls", []string{"Healthy"}}},
	"Coffee":        {{"Oat Milk Latte", []string{"Coffee", "Vegan"}}, {"Cold Brew", []string{"Coffee"}}, {"Breakfast Sandwich", []string{"Breakfast", "High protein"}}},
	"Bakery":        {{"Butter Croissant", []string{"Breakfast"}}, {"Blueberry Muffin", []string{"Breakfast"}}, {"Sourdough Loaf", nil}},
	"Tea":           {{"Matcha Latte", []string{"Matcha"}}, {"Chai", nil}, {"Avocado Toast", []string{"Breakfast", "Healthy", "Vegan"}}},
	"Grocery":       {{"Rotisserie Chicken", []string{"High protein"}}, {"Salad Kit", []string{"Healthy"}}, {"Greek Yogurt", []string{"High protein", "Breakfast"}}},
	"Organic":       {{"Organic Kale", []string{"Healthy", "Vegan"}}, {"Protein Bar", []string{"High protein"}}, {"Cold Pressed Juice", []string{"Healthy"}}},
	"Ice cream":     {{"Vanilla Cone", nil}, {"Dairy-free Sorbet", []string{"Vegan"}}},
	"Boba":          {{"Brown Sugar Boba", nil}, {"Taro Milk Tea", nil}},
	"Bar":           {{"House Lager", nil}, {"Loaded Fries", []string{"Late night"}}},
}

var menuCategories = []string{"main", "side", "drink", "dessert", "snack"}

type MenuItemFactory struct {
	fake faker.Faker
	rng  *rand.Rand
}

// newMenuItemFactory shares the vendor factory's sources so a seed
// reproduces vendors and menus together.
func newMenuItemFactory(fake faker.Faker, rng *rand.Rand) *MenuItemFactory {
	return &MenuItemFactory{fake: fake, rng: rng}
}

func (mf *MenuItemFactory) CreateMenuItem(vendor *models.Vendor) models.MenuItem {
	d := dish{name: "Special of the Day"}
	if dishes, ok := dishesByCuisine[vendor.Cuisine]; ok {
		d = dishes[mf.rng.Intn(len(dishes))]
	}

	base := 3.0 + float64(vendor.PriceTier)*4
	price := math.Round((base+mf.rng.Float64()*float64(vendor.PriceTier)*5)*100) / 100

	return models.MenuItem{
		ID:          cuid.New(),
		VendorID:    vendor.ID,
		Name:        d.name,
		Description: mf.fake.Lorem().Sentence(8),
		Price:       price,
		Category:    menuCategories[mf.rng.Intn(len(menuCategories))],
		Tags:        append([]string(nil), d.tags...),
	}
}
