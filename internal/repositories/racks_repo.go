package repositories

import (
	"context"
	"errors"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RackRepository interface {
	Create(ctx context.Context, rack *models.Rack) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rack, error)
	CodeExists(ctx context.Context, zoneID uuid.UUID, code string) (bool, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Move(ctx context.Context, id, zoneID, warehouseID uuid.UUID, position int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByZone(ctx context.Context, zoneID uuid.UUID, limit, offset int) ([]*models.Rack, error)
	CountShelves(ctx context.Context, id uuid.UUID) (int, error)
	NextPosition(ctx context.Context, zoneID uuid.UUID) (int, error)
	ShiftPositions(ctx context.Context, zoneID uuid.UUID, fromPosition int) error
}

type rackRepo struct {
	db Database
}

func NewRackRepository(db Database) RackRepository {
	return &rackRepo{db: db}
}

func (r *rackRepo) Create(ctx context.Context, rack *models.Rack) error {
	query := `
		INSERT INTO racks (id, zone_id, warehouse_id, name, code, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, rack.ID, rack.ZoneID, rack.WarehouseID, rack.Name, rack.Code, rack.Position)
	return err
}

func (r *rackRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Rack, error) {
	rack := &models.Rack{}
	query := `
		SELECT id, zone_id, warehouse_id, name, code, position, created_at, updated_at
		FROM racks
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&rack.ID, &rack.ZoneID, &rack.WarehouseID, &rack.Name, &rack.Code, &rack.Position, &rack.CreatedAt, &rack.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rack, nil
}

func (r *rackRepo) CodeExists(ctx context.Context, zoneID uuid.UUID, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM racks WHERE zone_id = $1 AND code = $2)`
	if err := r.db.QueryRow(ctx, query, zoneID, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *rackRepo) Rename(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE racks SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, name, id)
	return err
}

// Move rewrites the rack's own parent and denormalized warehouse id in one
// statement. Shelves below still resolve through the rack id, keeping moves
// O(1) regardless of subtree size.
func (r *rackRepo) Move(ctx context.Context, id, zoneID, warehouseID uuid.UUID, position int) error {
	query := `
		UPDATE racks
		SET zone_id = $1, warehouse_id = $2, position = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, zoneID, warehouseID, position, id)
	return err
}

func (r *rackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM racks WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *rackRepo) ListByZone(ctx context.Context, zoneID uuid.UUID, limit, offset int) ([]*models.Rack, error) {
	query := `
		SELECT id, zone_id, warehouse_id, name, code, position, created_at, updated_at
		FROM racks
		WHERE zone_id = $1
		ORDER BY position, code
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, zoneID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var racks []*models.Rack
	for rows.Next() {
		rack := &models.Rack{}
		if err := rows.Scan(&rack.ID, &rack.ZoneID, &rack.WarehouseID, &rack.Name, &rack.Code, &rack.Position, &rack.CreatedAt, &rack.UpdatedAt); err != nil {
			return nil, err
		}
		racks = append(racks, rack)
	}
	return racks, rows.Err()
}

func (r *rackRepo) CountShelves(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM shelves WHERE rack_id = $1`
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// NextPosition returns the append slot at the end of the zone's rack order.
func (r *rackRepo) NextPosition(ctx context.Context, zoneID uuid.UUID) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(position), -1) + 1 FROM racks WHERE zone_id = $1`
	if err := r.db.QueryRow(ctx, query, zoneID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

// ShiftPositions opens a slot at fromPosition among the zone's racks.
func (r *rackRepo) ShiftPositions(ctx context.Context, zoneID uuid.UUID, fromPosition int) error {
	query := `UPDATE racks SET position = position + 1 WHERE zone_id = $1 AND position >= $2`
	_, err := r.db.Exec(ctx, query, zoneID, fromPosition)
	return err
}
