package repositories

import (
	"context"
	"errors"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *models.Warehouse) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error)
	CountZones(ctx context.Context, id uuid.UUID) (int, error)
	Stats(ctx context.Context, id uuid.UUID) (*models.WarehouseStats, error)
}

type warehouseRepo struct {
	db Database
}

func NewWarehouseRepository(db Database) WarehouseRepository {
	return &warehouseRepo{db: db}
}

func (r *warehouseRepo) Create(ctx context.Context, warehouse *models.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, name, code, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, warehouse.ID, warehouse.Name, warehouse.Code, warehouse.Address)
	return err
}

func (r *warehouseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{}
	query := `
		SELECT id, name, code, address, created_at, updated_at
		FROM warehouses
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&warehouse.ID, &warehouse.Name, &warehouse.Code, &warehouse.Address, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return warehouse, nil
}

func (r *warehouseRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM warehouses WHERE code = $1)`
	if err := r.db.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *warehouseRepo) Rename(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE warehouses SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, name, id)
	return err
}

func (r *warehouseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM warehouses WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *warehouseRepo) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	query := `
		SELECT id, name, code, address, created_at, updated_at
		FROM warehouses
		ORDER BY code
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []*models.Warehouse
	for rows.Next() {
		warehouse := &models.Warehouse{}
		if err := rows.Scan(&warehouse.ID, &warehouse.Name, &warehouse.Code, &warehouse.Address, &warehouse.CreatedAt, &warehouse.UpdatedAt); err != nil {
			return nil, err
		}
		warehouses = append(warehouses, warehouse)
	}
	return warehouses, rows.Err()
}

// CountZones is the live child count used by the delete guard. Computed at
// call time, never read from the cached stats.
func (r *warehouseRepo) CountZones(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM zones WHERE warehouse_id = $1`
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *warehouseRepo) Stats(ctx context.Context, id uuid.UUID) (*models.WarehouseStats, error) {
	stats := &models.WarehouseStats{WarehouseID: id}
	query := `
		SELECT
			(SELECT COUNT(*) FROM zones WHERE warehouse_id = $1),
			(SELECT COUNT(*) FROM racks WHERE warehouse_id = $1),
			(SELECT COUNT(*) FROM shelves WHERE warehouse_id = $1),
			(SELECT COUNT(DISTINCT p.sku)
			 FROM placements p
			 JOIN shelves s ON s.id = p.shelf_id
			 WHERE s.warehouse_id = $1 AND p.quantity > 0)
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&stats.Zones, &stats.Racks, &stats.Shelves, &stats.Products)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
