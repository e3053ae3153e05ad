package repositories

import (
	"context"
	"errors"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ZoneRepository interface {
	Create(ctx context.Context, zone *models.Zone) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Zone, error)
	CodeExists(ctx context.Context, warehouseID uuid.UUID, code string) (bool, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Move(ctx context.Context, id, warehouseID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, limit, offset int) ([]*models.Zone, error)
	CountRacks(ctx context.Context, id uuid.UUID) (int, error)
}

type zoneRepo struct {
	db Database
}

func NewZoneRepository(db Database) ZoneRepository {
	return &zoneRepo{db: db}
}

func (r *zoneRepo) Create(ctx context.Context, zone *models.Zone) error {
	query := `
		INSERT INTO zones (id, warehouse_id, name, code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, zone.ID, zone.WarehouseID, zone.Name, zone.Code)
	return err
}

func (r *zoneRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	zone := &models.Zone{}
	query := `
		SELECT id, warehouse_id, name, code, created_at, updated_at
		FROM zones
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&zone.ID, &zone.WarehouseID, &zone.Name, &zone.Code, &zone.CreatedAt, &zone.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return zone, nil
}

func (r *zoneRepo) CodeExists(ctx context.Context, warehouseID uuid.UUID, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM zones WHERE warehouse_id = $1 AND code = $2)`
	if err := r.db.QueryRow(ctx, query, warehouseID, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *zoneRepo) Rename(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE zones SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, name, id)
	return err
}

// Move reparents the zone. Racks and shelves below it keep resolving through
// the zone's own id, so no descendant rows are touched.
func (r *zoneRepo) Move(ctx context.Context, id, warehouseID uuid.UUID) error {
	query := `UPDATE zones SET warehouse_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, warehouseID, id)
	return err
}

func (r *zoneRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM zones WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *zoneRepo) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, limit, offset int) ([]*models.Zone, error) {
	query := `
		SELECT id, warehouse_id, name, code, created_at, updated_at
		FROM zones
		WHERE warehouse_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []*models.Zone
	for rows.Next() {
		zone := &models.Zone{}
		if err := rows.Scan(&zone.ID, &zone.WarehouseID, &zone.Name, &zone.Code, &zone.CreatedAt, &zone.UpdatedAt); err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}

func (r *zoneRepo) CountRacks(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM racks WHERE zone_id = $1`
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
