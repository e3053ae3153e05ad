package repositories

import (
	"context"
	"errors"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ShelfRepository interface {
	Create(ctx context.Context, shelf *models.Shelf) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shelf, error)
	CodeExists(ctx context.Context, rackID uuid.UUID, code string) (bool, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Move(ctx context.Context, id, rackID, zoneID, warehouseID uuid.UUID, position int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRack(ctx context.Context, rackID uuid.UUID, limit, offset int) ([]*models.Shelf, error)
	CountPlacements(ctx context.Context, id uuid.UUID) (int, error)
	NextPosition(ctx context.Context, rackID uuid.UUID) (int, error)
	ShiftPositions(ctx context.Context, rackID uuid.UUID, fromPosition int) error
}

type shelfRepo struct {
	db Database
}

func NewShelfRepository(db Database) ShelfRepository {
	return &shelfRepo{db: db}
}

func (r *shelfRepo) Create(ctx context.Context, shelf *models.Shelf) error {
	query := `
		INSERT INTO shelves (id, rack_id, zone_id, warehouse_id, name, code, position, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, shelf.ID, shelf.RackID, shelf.ZoneID, shelf.WarehouseID, shelf.Name, shelf.Code, shelf.Position, shelf.Capacity)
	return err
}

func (r *shelfRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Shelf, error) {
	shelf := &models.Shelf{}
	query := `
		SELECT id, rack_id, zone_id, warehouse_id, name, code, position, capacity, created_at, updated_at
		FROM shelves
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&shelf.ID, &shelf.RackID, &shelf.ZoneID, &shelf.WarehouseID, &shelf.Name, &shelf.Code, &shelf.Position, &shelf.Capacity, &shelf.CreatedAt, &shelf.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return shelf, nil
}

func (r *shelfRepo) CodeExists(ctx context.Context, rackID uuid.UUID, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM shelves WHERE rack_id = $1 AND code = $2)`
	if err := r.db.QueryRow(ctx, query, rackID, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *shelfRepo) Rename(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE shelves SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, name, id)
	return err
}

func (r *shelfRepo) Move(ctx context.Context, id, rackID, zoneID, warehouseID uuid.UUID, position int) error {
	query := `
		UPDATE shelves
		SET rack_id = $1, zone_id = $2, warehouse_id = $3, position = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, rackID, zoneID, warehouseID, position, id)
	return err
}

func (r *shelfRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM shelves WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *shelfRepo) ListByRack(ctx context.Context, rackID uuid.UUID, limit, offset int) ([]*models.Shelf, error) {
	query := `
		SELECT id, rack_id, zone_id, warehouse_id, name, code, position, capacity, created_at, updated_at
		FROM shelves
		WHERE rack_id = $1
		ORDER BY position, code
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, rackID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shelves []*models.Shelf
	for rows.Next() {
		shelf := &models.Shelf{}
		if err := rows.Scan(&shelf.ID, &shelf.RackID, &shelf.ZoneID, &shelf.WarehouseID, &shelf.Name, &shelf.Code, &shelf.Position, &shelf.Capacity, &shelf.CreatedAt, &shelf.UpdatedAt); err != nil {
			return nil, err
		}
		shelves = append(shelves, shelf)
	}
	return shelves, rows.Err()
}

// CountPlacements backs the shelf delete guard: a shelf with stock on it
// cannot be removed.
func (r *shelfRepo) CountPlacements(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM placements WHERE shelf_id = $1 AND quantity > 0`
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *shelfRepo) NextPosition(ctx context.Context, rackID uuid.UUID) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(position), -1) + 1 FROM shelves WHERE rack_id = $1`
	if err := r.db.QueryRow(ctx, query, rackID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *shelfRepo) ShiftPositions(ctx context.Context, rackID uuid.UUID, fromPosition int) error {
	query := `UPDATE shelves SET position = position + 1 WHERE rack_id = $1 AND position >= $2`
	_, err := r.db.Exec(ctx, query, rackID, fromPosition)
	return err
}
