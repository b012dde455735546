package postgres

import (
	"context"

	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertMenuItem = `
        INSERT INTO menu_items (id, vendor_id, name, description, price, category, tags)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE SET
            vendor_id = EXCLUDED.vendor_id,
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            price = EXCLUDED.price,
            category = EXCLUDED.category,
            tags = EXCLUDED.tags
    `

type MenuItemRepository struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

// GetByVendorIDs groups the menu items of the given vendors by vendor id.
func (r *MenuItemRepository) GetByVendorIDs(ctx context.Context, vendorIDs []string) (map[string][]models.MenuItem, error) {
	query := `
        SELECT id, vendor_id, name, description, price, category, tags
        FROM menu_items
        WHERE vendor_id = ANY($1)
        ORDER BY vendor_id, price, name
    `
	rows, err := r.pool.Query(ctx, query, vendorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]models.MenuItem)
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(
			&item.ID,
			&item.VendorID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.Category,
			&item.Tags,
		); err != nil {
			return nil, err
		}
		items[item.VendorID] = append(items[item.VendorID], item)
	}
	return items, rows.Err()
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count)
	return count, err
}

func queueMenuItem(batch *pgx.Batch, item *models.MenuItem) {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	batch.Queue(insertMenuItem,
		item.ID,
		item.VendorID,
		item.Name,
		item.Description,
		item.Price,
		item.Category,
		tags,
	)
}
