package services

import (
	"context"
	"log"
	"time"

	"godown/internal/caching"
	"godown/internal/common"
	"godown/internal/models"
	"godown/internal/repositories"

	"github.com/google/uuid"
)

const statsCacheTTL = 24 * time.Hour

// LocationsService owns the warehouse→zone→rack→shelf hierarchy and its
// structural invariants: sibling-unique immutable codes, child-count delete
// guards, and position-preserving O(1) moves.
type LocationsService interface {
	CreateWarehouse(ctx context.Context, name, code string, address *string) (*models.Warehouse, error)
	RenameWarehouse(ctx context.Context, id uuid.UUID, name string) error
	DeleteWarehouse(ctx context.Context, id uuid.UUID) error
	GetWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, *models.WarehouseStats, error)
	ListWarehouses(ctx context.Context, limit, offset int) ([]*models.Warehouse, error)

	CreateZone(ctx context.Context, warehouseID uuid.UUID, name, code string) (*models.Zone, error)
	RenameZone(ctx context.Context, id uuid.UUID, name string) error
	MoveZone(ctx context.Context, id, newWarehouseID uuid.UUID) error
	DeleteZone(ctx context.Context, id uuid.UUID) error
	ListZones(ctx context.Context, warehouseID uuid.UUID, limit, offset int) ([]*models.Zone, error)

	CreateRack(ctx context.Context, zoneID uuid.UUID, name, code string, position *int) (*models.Rack, error)
	RenameRack(ctx context.Context, id uuid.UUID, name string) error
	MoveRack(ctx context.Context, id, newZoneID uuid.UUID, position *int) error
	DeleteRack(ctx context.Context, id uuid.UUID) error
	ListRacks(ctx context.Context, zoneID uuid.UUID, limit, offset int) ([]*models.Rack, error)

	CreateShelf(ctx context.Context, rackID uuid.UUID, name, code string, position, capacity *int) (*models.Shelf, error)
	RenameShelf(ctx context.Context, id uuid.UUID, name string) error
	MoveShelf(ctx context.Context, id, newRackID uuid.UUID, position *int) error
	DeleteShelf(ctx context.Context, id uuid.UUID) error
	ListShelves(ctx context.Context, rackID uuid.UUID, limit, offset int) ([]*models.Shelf, error)
	ListShelfPlacements(ctx context.Context, shelfID uuid.UUID) ([]*models.Placement, error)

	// ResolveShelf verifies that a fully-specified location exists and that
	// all four levels are consistent with each other.
	ResolveShelf(ctx context.Context, warehouseID, zoneID, rackID, shelfID uuid.UUID) (*models.Shelf, error)
}

type locationsService struct {
	warehouseRepo repositories.WarehouseRepository
	zoneRepo      repositories.ZoneRepository
	rackRepo      repositories.RackRepository
	shelfRepo     repositories.ShelfRepository
	placementRepo repositories.PlacementRepository
	cache         caching.CacheService
	audit         AuditLogsService
}

func NewLocationsService(
	warehouseRepo repositories.WarehouseRepository,
	zoneRepo repositories.ZoneRepository,
	rackRepo repositories.RackRepository,
	shelfRepo repositories.ShelfRepository,
	placementRepo repositories.PlacementRepository,
	cache caching.CacheService,
	audit AuditLogsService,
) LocationsService {
	return &locationsService{
		warehouseRepo: warehouseRepo,
		zoneRepo:      zoneRepo,
		rackRepo:      rackRepo,
		shelfRepo:     shelfRepo,
		placementRepo: placementRepo,
		cache:         cache,
		audit:         audit,
	}
}

// refreshStats recomputes the cached child counts after a structural change.
// Failures degrade reads to the SQL counts, so they are only logged.
func (s *locationsService) refreshStats(ctx context.Context, warehouseID uuid.UUID) {
	stats, err := s.warehouseRepo.Stats(ctx, warehouseID)
	if err != nil {
		log.Printf("WARN: stats recompute failed for warehouse %s: %v", warehouseID, err)
		return
	}
	if err := s.cache.SetWarehouseStats(ctx, stats, statsCacheTTL); err != nil {
		log.Printf("WARN: stats cache write failed for warehouse %s: %v", warehouseID, err)
	}
}

// Warehouse operations

func (s *locationsService) CreateWarehouse(ctx context.Context, name, code string, address *string) (*models.Warehouse, error) {
	if name == "" {
		return nil, common.Validationf("warehouse name is required")
	}
	code, err := common.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	exists, err := s.warehouseRepo.CodeExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.Validationf("warehouse code %s already exists", code)
	}

	warehouse := &models.Warehouse{
		ID:      uuid.New(),
		Name:    name,
		Code:    code,
		Address: address,
	}
	if err := s.warehouseRepo.Create(ctx, warehouse); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, "warehouse", warehouse.ID.String(), warehouse.Name, models.ActionCreate, models.JSONB{"code": code})
	s.refreshStats(ctx, warehouse.ID)
	return warehouse, nil
}

func (s *locationsService) RenameWarehouse(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return common.Validationf("warehouse name is required")
	}
	warehouse, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return common.NotFoundf("warehouse %s not found", id)
	}

	// Rename never touches the code.
	if err := s.warehouseRepo.Rename(ctx, id, name); err != nil {
		return err
	}
	s.audit.Emit(ctx, "warehouse", id.String(), name, models.ActionUpdate, models.JSONB{"name": models.JSONB{"from": warehouse.Name, "to": name}})
	return nil
}

func (s *locationsService) DeleteWarehouse(ctx context.Context, id uuid.UUID) error {
	warehouse, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return common.NotFoundf("warehouse %s not found", id)
	}

	// Live count, not the cached stats.
	zones, err := s.warehouseRepo.CountZones(ctx, id)
	if err != nil {
		return err
	}
	if zones > 0 {
		return common.Conflictf("warehouse %s has %d zones; delete them first", warehouse.Code, zones)
	}

	if err := s.warehouseRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Emit(ctx, "warehouse", id.String(), warehouse.Name, models.ActionDelete, nil)
	if err := s.cache.DeleteWarehouseStats(ctx, id); err != nil {
		log.Printf("WARN: stats cache delete failed for warehouse %s: %v", id, err)
	}
	return nil
}

func (s *locationsService) GetWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, *models.WarehouseStats, error) {
	warehouse, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if warehouse == nil {
		return nil, nil, common.NotFoundf("warehouse %s not found", id)
	}

	stats, err := s.cache.GetWarehouseStats(ctx, id)
	if err != nil || stats == nil {
		stats, err = s.warehouseRepo.Stats(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if cacheErr := s.cache.SetWarehouseStats(ctx, stats, statsCacheTTL); cacheErr != nil {
			log.Printf("WARN: stats cache write failed for warehouse %s: %v", id, cacheErr)
		}
	}
	return warehouse, stats, nil
}

func (s *locationsService) ListWarehouses(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.warehouseRepo.List(ctx, limit, offset)
}

// Zone operations

func (s *locationsService) CreateZone(ctx context.Context, warehouseID uuid.UUID, name, code string) (*models.Zone, error) {
	if name == "" {
		return nil, common.Validationf("zone name is required")
	}
	code, err := common.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	warehouse, err := s.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, common.NotFoundf("warehouse %s not found", warehouseID)
	}

	exists, err := s.zoneRepo.CodeExists(ctx, warehouseID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.Validationf("zone code %s already exists in warehouse %s", code, warehouse.Code)
	}

	zone := &models.Zone{
		ID:          uuid.New(),
		WarehouseID: warehouseID,
		Name:        name,
		Code:        code,
	}
	if err := s.zoneRepo.Create(ctx, zone); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, "zone", zone.ID.String(), zone.Name, models.ActionCreate, models.JSONB{"code": code, "warehouse_id": warehouseID.String()})
	s.refreshStats(ctx, warehouseID)
	return zone, nil
}

func (s *locationsService) RenameZone(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return common.Validationf("zone name is required")
	}
	zone, err := s.zoneRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if zone == nil {
		return common.NotFoundf("zone %s not found", id)
	}
	if err := s.zoneRepo.Rename(ctx, id, name); err != nil {
		return err
	}
	s.audit.Emit(ctx, "zone", id.String(), name, models.ActionUpdate, models.JSONB{"name": models.JSONB{"from": zone.Name, "to": name}})
	return nil
}

func (s *locationsService) MoveZone(ctx context.Context, id, newWarehouseID uuid.UUID) error {
	zone, err := s.zoneRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if zone == nil {
		return common.NotFoundf("zone %s not found", id)
	}
	if newWarehouseID == id {
		return common.Validationf("cannot move a node into its own subtree")
	}

	warehouse, err := s.warehouseRepo.GetByID(ctx, newWarehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return common.NotFoundf("warehouse %s not found", newWarehouseID)
	}
	if zone.WarehouseID == newWarehouseID {
		return nil
	}

	exists, err := s.zoneRepo.CodeExists(ctx, newWarehouseID, zone.Code)
	if err != nil {
		return err
	}
	if exists {
		return common.Validationf("zone code %s already exists in warehouse %s", zone.Code, warehouse.Code)
	}

	if err := s.zoneRepo.Move(ctx, id, newWarehouseID); err != nil {
		return err
	}

	s.audit.Emit(ctx, "zone", id.String(), zone.Name, models.ActionMove, models.JSONB{
		"warehouse_id": models.JSONB{"from": zone.WarehouseID.String(), "to": newWarehouseID.String()},
	})
	s.refreshStats(ctx, zone.WarehouseID)
	s.refreshStats(ctx, newWarehouseID)
	return nil
}

func (s *locationsService) DeleteZone(ctx context.Context, id uuid.UUID) error {
	zone, err := s.zoneRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if zone == nil {
		return common.NotFoundf("zone %s not found", id)
	}

	racks, err := s.zoneRepo.CountRacks(ctx, id)
	if err != nil {
		return err
	}
	if racks > 0 {
		return common.Conflictf("zone %s has %d racks; delete them first", zone.Code, racks)
	}

	if err := s.zoneRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Emit(ctx, "zone", id.String(), zone.Name, models.ActionDelete, nil)
	s.refreshStats(ctx, zone.WarehouseID)
	return nil
}

func (s *locationsService) ListZones(ctx context.Context, warehouseID uuid.UUID, limit, offset int) ([]*models.Zone, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.zoneRepo.ListByWarehouse(ctx, warehouseID, limit, offset)
}

// Rack operations

func (s *locationsService) CreateRack(ctx context.Context, zoneID uuid.UUID, name, code string, position *int) (*models.Rack, error) {
	if name == "" {
		return nil, common.Validationf("rack name is required")
	}
	code, err := common.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	zone, err := s.zoneRepo.GetByID(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, common.NotFoundf("zone %s not found", zoneID)
	}

	exists, err := s.rackRepo.CodeExists(ctx, zoneID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.Validationf("rack code %s already exists in zone %s", code, zone.Code)
	}

	pos, err := s.resolveRackPosition(ctx, zoneID, position)
	if err != nil {
		return nil, err
	}

	rack := &models.Rack{
		ID:          uuid.New(),
		ZoneID:      zoneID,
		WarehouseID: zone.WarehouseID,
		Name:        name,
		Code:        code,
		Position:    pos,
	}
	if err := s.rackRepo.Create(ctx, rack); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, "rack", rack.ID.String(), rack.Name, models.ActionCreate, models.JSONB{"code": code, "zone_id": zoneID.String()})
	s.refreshStats(ctx, zone.WarehouseID)
	return rack, nil
}

func (s *locationsService) resolveRackPosition(ctx context.Context, zoneID uuid.UUID, position *int) (int, error) {
	if position == nil {
		return s.rackRepo.NextPosition(ctx, zoneID)
	}
	if *position < 0 {
		return 0, common.Validationf("position must not be negative")
	}
	if err := s.rackRepo.ShiftPositions(ctx, zoneID, *position); err != nil {
		return 0, err
	}
	return *position, nil
}

func (s *locationsService) RenameRack(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return common.Validationf("rack name is required")
	}
	rack, err := s.rackRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rack == nil {
		return common.NotFoundf("rack %s not found", id)
	}
	if err := s.rackRepo.Rename(ctx, id, name); err != nil {
		return err
	}
	s.audit.Emit(ctx, "rack", id.String(), name, models.ActionUpdate, models.JSONB{"name": models.JSONB{"from": rack.Name, "to": name}})
	return nil
}

// MoveRack rewrites the rack's zone and denormalized warehouse id. Shelves
// beneath it are untouched: they resolve through the rack's own id.
func (s *locationsService) MoveRack(ctx context.Context, id, newZoneID uuid.UUID, position *int) error {
	rack, err := s.rackRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rack == nil {
		return common.NotFoundf("rack %s not found", id)
	}
	if newZoneID == id {
		return common.Validationf("cannot move a node into its own subtree")
	}

	zone, err := s.zoneRepo.GetByID(ctx, newZoneID)
	if err != nil {
		return err
	}
	if zone == nil {
		return common.NotFoundf("zone %s not found", newZoneID)
	}

	if newZoneID != rack.ZoneID {
		exists, err := s.rackRepo.CodeExists(ctx, newZoneID, rack.Code)
		if err != nil {
			return err
		}
		if exists {
			return common.Validationf("rack code %s already exists in zone %s", rack.Code, zone.Code)
		}
	}

	pos, err := s.resolveRackPosition(ctx, newZoneID, position)
	if err != nil {
		return err
	}

	if err := s.rackRepo.Move(ctx, id, newZoneID, zone.WarehouseID, pos); err != nil {
		return err
	}

	s.audit.Emit(ctx, "rack", id.String(), rack.Name, models.ActionMove, models.JSONB{
		"zone_id": models.JSONB{"from": rack.ZoneID.String(), "to": newZoneID.String()},
	})
	s.refreshStats(ctx, rack.WarehouseID)
	s.refreshStats(ctx, zone.WarehouseID)
	return nil
}

func (s *locationsService) DeleteRack(ctx context.Context, id uuid.UUID) error {
	rack, err := s.rackRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rack == nil {
		return common.NotFoundf("rack %s not found", id)
	}

	shelves, err := s.rackRepo.CountShelves(ctx, id)
	if err != nil {
		return err
	}
	if shelves > 0 {
		return common.Conflictf("rack %s has %d shelves; delete them first", rack.Code, shelves)
	}

	if err := s.rackRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Emit(ctx, "rack", id.String(), rack.Name, models.ActionDelete, nil)
	s.refreshStats(ctx, rack.WarehouseID)
	return nil
}

func (s *locationsService) ListRacks(ctx context.Context, zoneID uuid.UUID, limit, offset int) ([]*models.Rack, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.rackRepo.ListByZone(ctx, zoneID, limit, offset)
}

// Shelf operations

func (s *locationsService) CreateShelf(ctx context.Context, rackID uuid.UUID, name, code string, position, capacity *int) (*models.Shelf, error) {
	if name == "" {
		return nil, common.Validationf("shelf name is required")
	}
	code, err := common.NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	if capacity != nil && *capacity <= 0 {
		return nil, common.Validationf("shelf capacity must be greater than 0")
	}

	rack, err := s.rackRepo.GetByID(ctx, rackID)
	if err != nil {
		return nil, err
	}
	if rack == nil {
		return nil, common.NotFoundf("rack %s not found", rackID)
	}

	exists, err := s.shelfRepo.CodeExists(ctx, rackID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.Validationf("shelf code %s already exists in rack %s", code, rack.Code)
	}

	pos, err := s.resolveShelfPosition(ctx, rackID, position)
	if err != nil {
		return nil, err
	}

	shelf := &models.Shelf{
		ID:          uuid.New(),
		RackID:      rackID,
		ZoneID:      rack.ZoneID,
		WarehouseID: rack.WarehouseID,
		Name:        name,
		Code:        code,
		Position:    pos,
		Capacity:    capacity,
	}
	if err := s.shelfRepo.Create(ctx, shelf); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, "shelf", shelf.ID.String(), shelf.Name, models.ActionCreate, models.JSONB{"code": code, "rack_id": rackID.String()})
	s.refreshStats(ctx, rack.WarehouseID)
	return shelf, nil
}

func (s *locationsService) resolveShelfPosition(ctx context.Context, rackID uuid.UUID, position *int) (int, error) {
	if position == nil {
		return s.shelfRepo.NextPosition(ctx, rackID)
	}
	if *position < 0 {
		return 0, common.Validationf("position must not be negative")
	}
	if err := s.shelfRepo.ShiftPositions(ctx, rackID, *position); err != nil {
		return 0, err
	}
	return *position, nil
}

func (s *locationsService) RenameShelf(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return common.Validationf("shelf name is required")
	}
	shelf, err := s.shelfRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if shelf == nil {
		return common.NotFoundf("shelf %s not found", id)
	}
	if err := s.shelfRepo.Rename(ctx, id, name); err != nil {
		return err
	}
	s.audit.Emit(ctx, "shelf", id.String(), name, models.ActionUpdate, models.JSONB{"name": models.JSONB{"from": shelf.Name, "to": name}})
	return nil
}

func (s *locationsService) MoveShelf(ctx context.Context, id, newRackID uuid.UUID, position *int) error {
	shelf, err := s.shelfRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if shelf == nil {
		return common.NotFoundf("shelf %s not found", id)
	}
	if newRackID == id {
		return common.Validationf("cannot move a node into its own subtree")
	}

	rack, err := s.rackRepo.GetByID(ctx, newRackID)
	if err != nil {
		return err
	}
	if rack == nil {
		return common.NotFoundf("rack %s not found", newRackID)
	}

	if newRackID != shelf.RackID {
		exists, err := s.shelfRepo.CodeExists(ctx, newRackID, shelf.Code)
		if err != nil {
			return err
		}
		if exists {
			return common.Validationf("shelf code %s already exists in rack %s", shelf.Code, rack.Code)
		}
	}

	pos, err := s.resolveShelfPosition(ctx, newRackID, position)
	if err != nil {
		return err
	}

	if err := s.shelfRepo.Move(ctx, id, newRackID, rack.ZoneID, rack.WarehouseID, pos); err != nil {
		return err
	}

	s.audit.Emit(ctx, "shelf", id.String(), shelf.Name, models.ActionMove, models.JSONB{
		"rack_id": models.JSONB{"from": shelf.RackID.String(), "to": newRackID.String()},
	})
	s.refreshStats(ctx, shelf.WarehouseID)
	s.refreshStats(ctx, rack.WarehouseID)
	return nil
}

func (s *locationsService) DeleteShelf(ctx context.Context, id uuid.UUID) error {
	shelf, err := s.shelfRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if shelf == nil {
		return common.NotFoundf("shelf %s not found", id)
	}

	placements, err := s.shelfRepo.CountPlacements(ctx, id)
	if err != nil {
		return err
	}
	if placements > 0 {
		return common.Conflictf("shelf %s still holds stock on %d placements", shelf.Code, placements)
	}

	if err := s.shelfRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Emit(ctx, "shelf", id.String(), shelf.Name, models.ActionDelete, nil)
	s.refreshStats(ctx, shelf.WarehouseID)
	return nil
}

func (s *locationsService) ListShelves(ctx context.Context, rackID uuid.UUID, limit, offset int) ([]*models.Shelf, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.shelfRepo.ListByRack(ctx, rackID, limit, offset)
}

func (s *locationsService) ListShelfPlacements(ctx context.Context, shelfID uuid.UUID) ([]*models.Placement, error) {
	shelf, err := s.shelfRepo.GetByID(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if shelf == nil {
		return nil, common.NotFoundf("shelf %s not found", shelfID)
	}
	return s.placementRepo.ListByShelf(ctx, shelfID)
}

func (s *locationsService) ResolveShelf(ctx context.Context, warehouseID, zoneID, rackID, shelfID uuid.UUID) (*models.Shelf, error) {
	shelf, err := s.shelfRepo.GetByID(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if shelf == nil {
		return nil, common.NotFoundf("shelf %s not found", shelfID)
	}
	if shelf.RackID != rackID || shelf.ZoneID != zoneID || shelf.WarehouseID != warehouseID {
		return nil, common.Validationf("location path does not resolve to shelf %s", shelf.Code)
	}
	return shelf, nil
}
