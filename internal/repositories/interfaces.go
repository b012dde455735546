package repositories

import (
	"context"

	"github.com/chrisdamba/foodmatch/internal/models"
)

// VendorFinder is the read side of the catalog used by the recommender.
// Returned vendors have passed Vendor.Validate.
type VendorFinder interface {
	FindNearby(ctx context.Context, location models.Location, radiusMeters float64) ([]models.Vendor, error)
	GetAll(ctx context.Context) ([]models.Vendor, error)
}

type VendorRepository interface {
	VendorFinder
	BulkCreate(ctx context.Context, vendors []*models.Vendor) error
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type MenuItemRepository interface {
	GetByVendorIDs(ctx context.Context, vendorIDs []string) (map[string][]models.MenuItem, error)
	Count(ctx context.Context) (int, error)
}
