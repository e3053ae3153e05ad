package repositories

import (
	"context"
	"errors"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StockUnitRepository interface {
	Create(ctx context.Context, unit *models.StockUnit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StockUnit, error)
	ListInbound(ctx context.Context, limit, offset int) ([]*models.StockUnit, error)
	CountByGRN(ctx context.Context, grnID uuid.UUID) (int, error)
}

type stockUnitRepo struct {
	db Database
}

func NewStockUnitRepository(db Database) StockUnitRepository {
	return &stockUnitRepo{db: db}
}

// Create is the return-intake path. Forward units are inserted inside the
// receipt transaction, not through here.
func (r *stockUnitRepo) Create(ctx context.Context, unit *models.StockUnit) error {
	query := `
		INSERT INTO stock_units (id, sku, product_name, store_id, order_id, grn_id, putaway_status, warehouse_id, zone_id, rack_id, shelf_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, unit.ID, unit.Sku, unit.ProductName, unit.StoreID, unit.OrderID, unit.GRNID, unit.Putaway, unit.WarehouseID, unit.ZoneID, unit.RackID, unit.ShelfID)
	return err
}

func (r *stockUnitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StockUnit, error) {
	unit := &models.StockUnit{}
	query := `
		SELECT id, sku, product_name, store_id, order_id, grn_id, putaway_status, warehouse_id, zone_id, rack_id, shelf_id, created_at, updated_at
		FROM stock_units
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&unit.ID, &unit.Sku, &unit.ProductName, &unit.StoreID, &unit.OrderID, &unit.GRNID, &unit.Putaway, &unit.WarehouseID, &unit.ZoneID, &unit.RackID, &unit.ShelfID, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return unit, nil
}

// ListInbound feeds the put-away classifier: every unit still awaiting
// shelving, forward and reverse alike.
func (r *stockUnitRepo) ListInbound(ctx context.Context, limit, offset int) ([]*models.StockUnit, error) {
	query := `
		SELECT id, sku, product_name, store_id, order_id, grn_id, putaway_status, warehouse_id, zone_id, rack_id, shelf_id, created_at, updated_at
		FROM stock_units
		WHERE putaway_status = 'inbound'
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.StockUnit
	for rows.Next() {
		unit := &models.StockUnit{}
		if err := rows.Scan(&unit.ID, &unit.Sku, &unit.ProductName, &unit.StoreID, &unit.OrderID, &unit.GRNID, &unit.Putaway, &unit.WarehouseID, &unit.ZoneID, &unit.RackID, &unit.ShelfID, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (r *stockUnitRepo) CountByGRN(ctx context.Context, grnID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM stock_units WHERE grn_id = $1`
	if err := r.db.QueryRow(ctx, query, grnID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
