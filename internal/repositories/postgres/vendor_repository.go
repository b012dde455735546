package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chrisdamba/foodmatch/internal/geo"
	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const vendorColumns = `
            id, name, category, cuisine,
            ST_AsText(location::geometry) AS location,
            price_tier, rating, delivery_fee, is_open, tags, wait_status, social_proof`

const insertVendor = `
        INSERT INTO vendors (
            id, name, category, cuisine, location, price_tier, rating,
            delivery_fee, is_open, tags, wait_status, social_proof
        ) VALUES (
            $1, $2, $3, $4,
            ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography,
            $7, $8, $9, $10, $11, $12, $13
        )
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            category = EXCLUDED.category,
            cuisine = EXCLUDED.cuisine,
            location = EXCLUDED.location,
            price_tier = EXCLUDED.price_tier,
            rating = EXCLUDED.rating,
            delivery_fee = EXCLUDED.delivery_fee,
            is_open = EXCLUDED.is_open,
            tags = EXCLUDED.tags,
            wait_status = EXCLUDED.wait_status,
            social_proof = EXCLUDED.social_proof
    `

type VendorRepository struct {
	pool      *pgxpool.Pool
	menuItems *MenuItemRepository
	logger    *slog.Logger
}

func NewVendorRepository(pool *pgxpool.Pool, logger *slog.Logger) *VendorRepository {
	return &VendorRepository{
		pool:      pool,
		menuItems: NewMenuItemRepository(pool),
		logger:    logger,
	}
}

// BulkCreate upserts the vendors and their menu items in one transaction.
func (r *VendorRepository) BulkCreate(ctx context.Context, vendors []*models.Vendor) error {
	if len(vendors) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, vendor := range vendors {
		if err := vendor.Validate(); err != nil {
			return err
		}
		if err := queueVendor(batch, vendor); err != nil {
			return err
		}
		for i := range vendor.MenuItems {
			item := vendor.MenuItems[i]
			item.VendorID = vendor.ID
			queueMenuItem(batch, &item)
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert vendors: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *VendorRepository) GetAll(ctx context.Context) ([]models.Vendor, error) {
	query := `SELECT` + vendorColumns + ` FROM vendors ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

// ST_DWithin on geography measures on the spheroid, which can come out a few
// meters longer than the haversine distance the ranker uses. The query widens
// the radius by this factor and withinRadius trims the result back.
const spheroidSlack = 1.01

// FindNearby returns the vendors within radiusMeters (haversine) of location
// using the PostGIS geography index, nearest first.
func (r *VendorRepository) FindNearby(ctx context.Context, location models.Location, radiusMeters float64) ([]models.Vendor, error) {
	query := `
        SELECT` + vendorColumns + `
        FROM vendors
        WHERE ST_DWithin(
            location,
            ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
            $3
        )
        ORDER BY ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography), id
    `

	rows, err := r.pool.Query(ctx, query, location.Lon, location.Lat, radiusMeters*spheroidSlack)
	if err != nil {
		return nil, err
	}
	vendors, err := r.collect(ctx, rows)
	if err != nil {
		return nil, err
	}
	return withinRadius(vendors, location, radiusMeters), nil
}

func withinRadius(vendors []models.Vendor, location models.Location, radiusMeters float64) []models.Vendor {
	kept := vendors[:0]
	for _, vendor := range vendors {
		if geo.Distance(location, vendor.Location) <= radiusMeters {
			kept = append(kept, vendor)
		}
	}
	return kept
}

func (r *VendorRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM vendors").Scan(&count)
	return count, err
}

func (r *VendorRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE vendors CASCADE")
	return err
}

// collect scans vendor rows, attaches menu items and drops records that
// break a Vendor invariant.
func (r *VendorRepository) collect(ctx context.Context, rows pgx.Rows) ([]models.Vendor, error) {
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		if err := vendor.Validate(); err != nil {
			r.logger.Warn("skipping invalid vendor record", "vendor_id", vendor.ID, "error", err)
			continue
		}
		vendors = append(vendors, vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(vendors) == 0 {
		return vendors, nil
	}

	ids := make([]string, len(vendors))
	for i := range vendors {
		ids[i] = vendors[i].ID
	}
	items, err := r.menuItems.GetByVendorIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	for i := range vendors {
		vendors[i].MenuItems = items[vendors[i].ID]
	}
	return vendors, nil
}

func scanVendor(row pgx.Row) (models.Vendor, error) {
	var (
		vendor     models.Vendor
		category   string
		priceTier  int16
		waitStatus string
		social     []byte
	)
	err := row.Scan(
		&vendor.ID,
		&vendor.Name,
		&category,
		&vendor.Cuisine,
		&vendor.Location,
		&priceTier,
		&vendor.Rating,
		&vendor.DeliveryFee,
		&vendor.IsOpen,
		&vendor.Tags,
		&waitStatus,
		&social,
	)
	if err != nil {
		return models.Vendor{}, err
	}
	vendor.Category = models.Category(category)
	vendor.PriceTier = models.PriceTier(priceTier)
	vendor.WaitStatus = models.WaitStatus(waitStatus)
	if len(social) > 0 {
		var proof models.SocialProof
		if err := json.Unmarshal(social, &proof); err != nil {
			return models.Vendor{}, fmt.Errorf("vendor %s: malformed social proof: %w", vendor.ID, err)
		}
		vendor.SocialProof = &proof
	}
	return vendor, nil
}

func queueVendor(batch *pgx.Batch, vendor *models.Vendor) error {
	// nil is stored as SQL NULL
	var social any
	if vendor.SocialProof != nil {
		encoded, err := json.Marshal(vendor.SocialProof)
		if err != nil {
			return fmt.Errorf("vendor %s: %w", vendor.ID, err)
		}
		social = encoded
	}
	tags := vendor.Tags
	if tags == nil {
		tags = []string{}
	}

	batch.Queue(insertVendor,
		vendor.ID,
		vendor.Name,
		string(vendor.Category),
		vendor.Cuisine,
		vendor.Location.Lon,
		vendor.Location.Lat,
		int16(vendor.PriceTier),
		vendor.Rating,
		vendor.DeliveryFee,
		vendor.IsOpen,
		tags,
		string(vendor.WaitStatus),
		social,
	)
	return nil
}
