package repositories

import (
	"context"

	"godown/internal/models"

	"github.com/google/uuid"
)

type PlacementRepository interface {
	ListByShelf(ctx context.Context, shelfID uuid.UUID) ([]*models.Placement, error)
	ListBySku(ctx context.Context, sku string, limit, offset int) ([]*models.Placement, error)
}

type placementRepo struct {
	db Database
}

func NewPlacementRepository(db Database) PlacementRepository {
	return &placementRepo{db: db}
}

// Placements are written only inside the receipt transaction; this repo is
// the read surface.

func (r *placementRepo) ListByShelf(ctx context.Context, shelfID uuid.UUID) ([]*models.Placement, error) {
	query := `
		SELECT id, shelf_id, sku, product_name, quantity, updated_at
		FROM placements
		WHERE shelf_id = $1 AND quantity > 0
		ORDER BY sku
	`
	rows, err := r.db.Query(ctx, query, shelfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var placements []*models.Placement
	for rows.Next() {
		p := &models.Placement{}
		if err := rows.Scan(&p.ID, &p.ShelfID, &p.Sku, &p.ProductName, &p.Quantity, &p.UpdatedAt); err != nil {
			return nil, err
		}
		placements = append(placements, p)
	}
	return placements, rows.Err()
}

func (r *placementRepo) ListBySku(ctx context.Context, sku string, limit, offset int) ([]*models.Placement, error) {
	query := `
		SELECT id, shelf_id, sku, product_name, quantity, updated_at
		FROM placements
		WHERE sku = $1 AND quantity > 0
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, sku, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var placements []*models.Placement
	for rows.Next() {
		p := &models.Placement{}
		if err := rows.Scan(&p.ID, &p.ShelfID, &p.Sku, &p.ProductName, &p.Quantity, &p.UpdatedAt); err != nil {
			return nil, err
		}
		placements = append(placements, p)
	}
	return placements, rows.Err()
}
