// Package file keeps the vendor catalog in a single JSON document, an array of
// vendors with their menu items embedded.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/chrisdamba/foodmatch/internal/geo"
	"github.com/chrisdamba/foodmatch/internal/models"
)

type VendorRepository struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

func NewVendorRepository(path string, logger *slog.Logger) *VendorRepository {
	return &VendorRepository{path: path, logger: logger}
}

// GetAll reads the catalog. A missing file is an empty catalog. Records that
// cannot be decoded or fail validation are logged and skipped.
func (r *VendorRepository) GetAll(ctx context.Context) ([]models.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.load()
}

// FindNearby filters the catalog to vendors within radiusMeters of location,
// nearest first.
func (r *VendorRepository) FindNearby(ctx context.Context, location models.Location, radiusMeters float64) ([]models.Vendor, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	box := geo.BoundingBox(location, radiusMeters)
	type hit struct {
		vendor   models.Vendor
		distance float64
	}
	var hits []hit
	for _, v := range all {
		if !box.Contains(v.Location) {
			continue
		}
		if d := geo.Distance(location, v.Location); d <= radiusMeters {
			hits = append(hits, hit{vendor: v, distance: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].vendor.ID < hits[j].vendor.ID
	})

	vendors := make([]models.Vendor, len(hits))
	for i, h := range hits {
		vendors[i] = h.vendor
	}
	return vendors, nil
}

// BulkCreate upserts vendors by id and rewrites the file atomically.
func (r *VendorRepository) BulkCreate(ctx context.Context, vendors []*models.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, v := range vendors {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	existing, err := r.load()
	if err != nil {
		return err
	}
	index := make(map[string]int, len(existing))
	for i, v := range existing {
		index[v.ID] = i
	}
	for _, v := range vendors {
		vendor := *v
		vendor.MenuItems = append([]models.MenuItem(nil), v.MenuItems...)
		for i := range vendor.MenuItems {
			vendor.MenuItems[i].VendorID = vendor.ID
		}
		if i, ok := index[vendor.ID]; ok {
			existing[i] = vendor
			continue
		}
		index[vendor.ID] = len(existing)
		existing = append(existing, vendor)
	}
	return r.write(existing)
}

func (r *VendorRepository) Count(ctx context.Context) (int, error) {
	all, err := r.GetAll(ctx)
	return len(all), err
}

func (r *VendorRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return r.write([]models.Vendor{})
}

func (r *VendorRepository) load() ([]models.Vendor, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Vendor{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", r.path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("catalog %s is not a JSON array: %w", r.path, err)
	}

	vendors := make([]models.Vendor, 0, len(records))
	for i, raw := range records {
		var v models.Vendor
		if err := json.Unmarshal(raw, &v); err != nil {
			r.logger.Warn("skipping undecodable vendor record", "index", i, "error", err)
			continue
		}
		if err := v.Validate(); err != nil {
			r.logger.Warn("skipping invalid vendor record", "index", i, "vendor_id", v.ID, "error", err)
			continue
		}
		vendors = append(vendors, v)
	}
	return vendors, nil
}

func (r *VendorRepository) write(vendors []models.Vendor) error {
	data, err := json.MarshalIndent(vendors, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
