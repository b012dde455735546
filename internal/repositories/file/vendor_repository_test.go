package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrisdamba/foodmatch/internal/logging"
	"github.com/chrisdamba/foodmatch/internal/models"
)

var campus = models.Location{Lat: 42.2780, Lon: -83.7382}

func newVendor(id string, lat float64) *models.Vendor {
	return &models.Vendor{
		ID:        id,
		Name:      "Vendor " + id,
		Category:  models.CategoryRestaurants,
		Location:  models.Location{Lat: lat, Lon: campus.Lon},
		PriceTier: models.PriceModerate,
		Rating:    4.2,
		IsOpen:    true,
	}
}

func TestVendorRepositoryMissingFileIsEmpty(t *testing.T) {
	repo := NewVendorRepository(filepath.Join(t.TempDir(), "catalog.json"), logging.Discard())

	vendors, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(vendors) != 0 {
		t.Errorf("expected an empty catalog, got %d vendors", len(vendors))
	}
}

func TestVendorRepositoryBulkCreateAndFindNearby(t *testing.T) {
	ctx := context.Background()
	repo := NewVendorRepository(filepath.Join(t.TempDir(), "nested", "catalog.json"), logging.Discard())

	near := newVendor("near", campus.Lat+0.005)
	near.MenuItems = []models.MenuItem{{ID: "m1", Name: "Pho", Price: 11}}
	nearer := newVendor("nearer", campus.Lat+0.001)
	far := newVendor("far", campus.Lat+0.2)

	if err := repo.BulkCreate(ctx, []*models.Vendor{near, far, nearer}); err != nil {
		t.Fatalf("BulkCreate returned error: %v", err)
	}
	if near.MenuItems[0].VendorID != "" {
		t.Error("BulkCreate mutated the caller's menu items")
	}

	found, err := repo.FindNearby(ctx, campus, 1000)
	if err != nil {
		t.Fatalf("FindNearby returned error: %v", err)
	}
	if len(found) != 2 || found[0].ID != "nearer" || found[1].ID != "near" {
		t.Fatalf("FindNearby = %+v, want nearer then near", found)
	}
	if found[1].MenuItems[0].VendorID != "near" {
		t.Errorf("menu item vendor id = %q, want near", found[1].MenuItems[0].VendorID)
	}

	updated := newVendor("far", campus.Lat+0.2)
	updated.Rating = 1.5
	if err := repo.BulkCreate(ctx, []*models.Vendor{updated}); err != nil {
		t.Fatalf("BulkCreate returned error: %v", err)
	}
	if n, err := repo.Count(ctx); err != nil || n != 3 {
		t.Errorf("Count = %d, %v; want 3 after upsert", n, err)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll returned error: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("Count = %d after DeleteAll", n)
	}
}

func TestVendorRepositoryRejectsInvalidVendor(t *testing.T) {
	repo := NewVendorRepository(filepath.Join(t.TempDir(), "catalog.json"), logging.Discard())
	bad := newVendor("bad", 42)
	bad.Rating = 7

	if err := repo.BulkCreate(context.Background(), []*models.Vendor{bad}); err == nil {
		t.Error("expected BulkCreate to reject a rating above 5")
	}
}

func TestVendorRepositorySkipsInvalidRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `[
  {"id": "ok", "name": "Good", "category": "cafes", "location": {"lat": 42.278, "lon": -83.738}, "price_tier": "$", "rating": 4.5, "is_open": true},
  {"id": "bad-rating", "name": "Bad", "category": "cafes", "location": {"lat": 42.278, "lon": -83.738}, "price_tier": "$", "rating": 9, "is_open": true},
  {"id": "bad-coord", "name": "Bad", "category": "cafes", "location": {"lat": 120, "lon": -83.738}, "price_tier": "$$", "rating": 4, "is_open": true},
  {"id": "bad-tier", "name": "Bad", "category": "cafes", "location": {"lat": 42.278, "lon": -83.738}, "price_tier": "$$$$", "rating": 4, "is_open": true}
]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := NewVendorRepository(path, logging.Discard())
	vendors, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(vendors) != 1 || vendors[0].ID != "ok" {
		t.Errorf("GetAll = %+v, want only the valid record", vendors)
	}
	if vendors[0].PriceTier != models.PriceBudget {
		t.Errorf("PriceTier = %v, want $", vendors[0].PriceTier)
	}
}

func TestVendorRepositoryRejectsMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`{"vendors": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewVendorRepository(path, logging.Discard()).GetAll(context.Background()); err == nil {
		t.Error("expected an error for a non-array document")
	}
}

func TestVendorRepositoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewVendorRepository(filepath.Join(t.TempDir(), "catalog.json"), logging.Discard())
	if _, err := repo.GetAll(ctx); err == nil {
		t.Error("expected a context error")
	}
}
