package services

import (
	"context"
	"time"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) Create(ctx context.Context, warehouse *models.Warehouse) error {
	args := m.Called(ctx, warehouse)
	return args.Error(0)
}

func (m *MockWarehouseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockWarehouseRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockWarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWarehouseRepository) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) CountZones(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockWarehouseRepository) Stats(ctx context.Context, id uuid.UUID) (*models.WarehouseStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WarehouseStats), args.Error(1)
}

type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) Create(ctx context.Context, zone *models.Zone) error {
	args := m.Called(ctx, zone)
	return args.Error(0)
}

func (m *MockZoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Zone), args.Error(1)
}

func (m *MockZoneRepository) CodeExists(ctx context.Context, warehouseID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, warehouseID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockZoneRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockZoneRepository) Move(ctx context.Context, id, warehouseID uuid.UUID) error {
	args := m.Called(ctx, id, warehouseID)
	return args.Error(0)
}

func (m *MockZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockZoneRepository) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, limit, offset int) ([]*models.Zone, error) {
	args := m.Called(ctx, warehouseID, limit, offset)
	return args.Get(0).([]*models.Zone), args.Error(1)
}

func (m *MockZoneRepository) CountRacks(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type MockRackRepository struct {
	mock.Mock
}

func (m *MockRackRepository) Create(ctx context.Context, rack *models.Rack) error {
	args := m.Called(ctx, rack)
	return args.Error(0)
}

func (m *MockRackRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Rack, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rack), args.Error(1)
}

func (m *MockRackRepository) CodeExists(ctx context.Context, zoneID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, zoneID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockRackRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockRackRepository) Move(ctx context.Context, id, zoneID, warehouseID uuid.UUID, position int) error {
	args := m.Called(ctx, id, zoneID, warehouseID, position)
	return args.Error(0)
}

func (m *MockRackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRackRepository) ListByZone(ctx context.Context, zoneID uuid.UUID, limit, offset int) ([]*models.Rack, error) {
	args := m.Called(ctx, zoneID, limit, offset)
	return args.Get(0).([]*models.Rack), args.Error(1)
}

func (m *MockRackRepository) CountShelves(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockRackRepository) NextPosition(ctx context.Context, zoneID uuid.UUID) (int, error) {
	args := m.Called(ctx, zoneID)
	return args.Int(0), args.Error(1)
}

func (m *MockRackRepository) ShiftPositions(ctx context.Context, zoneID uuid.UUID, fromPosition int) error {
	args := m.Called(ctx, zoneID, fromPosition)
	return args.Error(0)
}

type MockShelfRepository struct {
	mock.Mock
}

func (m *MockShelfRepository) Create(ctx context.Context, shelf *models.Shelf) error {
	args := m.Called(ctx, shelf)
	return args.Error(0)
}

func (m *MockShelfRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shelf, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shelf), args.Error(1)
}

func (m *MockShelfRepository) CodeExists(ctx context.Context, rackID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, rackID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockShelfRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockShelfRepository) Move(ctx context.Context, id, rackID, zoneID, warehouseID uuid.UUID, position int) error {
	args := m.Called(ctx, id, rackID, zoneID, warehouseID, position)
	return args.Error(0)
}

func (m *MockShelfRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockShelfRepository) ListByRack(ctx context.Context, rackID uuid.UUID, limit, offset int) ([]*models.Shelf, error) {
	args := m.Called(ctx, rackID, limit, offset)
	return args.Get(0).([]*models.Shelf), args.Error(1)
}

func (m *MockShelfRepository) CountPlacements(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockShelfRepository) NextPosition(ctx context.Context, rackID uuid.UUID) (int, error) {
	args := m.Called(ctx, rackID)
	return args.Int(0), args.Error(1)
}

func (m *MockShelfRepository) ShiftPositions(ctx context.Context, rackID uuid.UUID, fromPosition int) error {
	args := m.Called(ctx, rackID, fromPosition)
	return args.Error(0)
}

type MockPlacementRepository struct {
	mock.Mock
}

func (m *MockPlacementRepository) ListByShelf(ctx context.Context, shelfID uuid.UUID) ([]*models.Placement, error) {
	args := m.Called(ctx, shelfID)
	return args.Get(0).([]*models.Placement), args.Error(1)
}

func (m *MockPlacementRepository) ListBySku(ctx context.Context, sku string, limit, offset int) ([]*models.Placement, error) {
	args := m.Called(ctx, sku, limit, offset)
	return args.Get(0).([]*models.Placement), args.Error(1)
}

type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) Create(ctx context.Context, party *models.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Party), args.Error(1)
}

func (m *MockPartyRepository) Update(ctx context.Context, party *models.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPartyRepository) List(ctx context.Context, limit, offset int) ([]*models.Party, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Party), args.Error(1)
}

func (m *MockPartyRepository) HasOpenPurchaseOrders(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, po *models.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) List(ctx context.Context, status *string, limit, offset int) ([]*models.PurchaseOrder, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, reason *string) (bool, error) {
	args := m.Called(ctx, id, from, to, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) NextNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockGRNRepository struct {
	mock.Mock
}

func (m *MockGRNRepository) Create(ctx context.Context, grn *models.GRN) error {
	args := m.Called(ctx, grn)
	return args.Error(0)
}

func (m *MockGRNRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GRN, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GRN), args.Error(1)
}

func (m *MockGRNRepository) ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]*models.GRN, error) {
	args := m.Called(ctx, poID)
	return args.Get(0).([]*models.GRN), args.Error(1)
}

func (m *MockGRNRepository) List(ctx context.Context, status *string, limit, offset int) ([]*models.GRN, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.GRN), args.Error(1)
}

func (m *MockGRNRepository) UpdateItemSplits(ctx context.Context, grnID uuid.UUID, splits []models.GRNItemSplit) (bool, error) {
	args := m.Called(ctx, grnID, splits)
	return args.Bool(0), args.Error(1)
}

func (m *MockGRNRepository) CancelDraft(ctx context.Context, id uuid.UUID, reason *string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockGRNRepository) NextNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockStockUnitRepository struct {
	mock.Mock
}

func (m *MockStockUnitRepository) Create(ctx context.Context, unit *models.StockUnit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockStockUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StockUnit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockUnit), args.Error(1)
}

func (m *MockStockUnitRepository) ListInbound(ctx context.Context, limit, offset int) ([]*models.StockUnit, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.StockUnit), args.Error(1)
}

func (m *MockStockUnitRepository) CountByGRN(ctx context.Context, grnID uuid.UUID) (int, error) {
	args := m.Called(ctx, grnID)
	return args.Int(0), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetWarehouseStats(ctx context.Context, warehouseID uuid.UUID) (*models.WarehouseStats, error) {
	args := m.Called(ctx, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WarehouseStats), args.Error(1)
}

func (m *MockCacheService) SetWarehouseStats(ctx context.Context, stats *models.WarehouseStats, ttl time.Duration) error {
	args := m.Called(ctx, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteWarehouseStats(ctx context.Context, warehouseID uuid.UUID) error {
	args := m.Called(ctx, warehouseID)
	return args.Error(0)
}

type MockOrderStatusLookup struct {
	mock.Mock
}

func (m *MockOrderStatusLookup) Lookup(ctx context.Context, storeID, orderID string) (*OrderStatus, error) {
	args := m.Called(ctx, storeID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OrderStatus), args.Error(1)
}

// noopAudit drops every event. Tests assert service behavior, not the trail.
type noopAudit struct{}

func (noopAudit) Emit(ctx context.Context, entityType, entityID, entityName, action string, changes models.JSONB) {
}

func (noopAudit) ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	return nil, nil
}

func (noopAudit) GetEntityHistory(ctx context.Context, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}

// MockPurchaseOrdersService stands in for the order-side receipt hook.
type MockPurchaseOrdersService struct {
	mock.Mock
}

func (m *MockPurchaseOrdersService) CreatePurchaseOrder(ctx context.Context, input *CreatePurchaseOrderInput) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrdersService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrdersService) ListPurchaseOrders(ctx context.Context, status *string, limit, offset int) ([]*models.PurchaseOrder, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrdersService) ConfirmPurchaseOrder(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrdersService) CancelPurchaseOrder(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockPurchaseOrdersService) ClosePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrdersService) ApplyReceiptTx(ctx context.Context, tx pgx.Tx, poID uuid.UUID, accepted map[string]int) (string, error) {
	args := m.Called(ctx, tx, poID, accepted)
	return args.String(0), args.Error(1)
}
