package services

import (
	"context"
	"log"

	"godown/internal/common"
	"godown/internal/models"
	"godown/internal/repositories"

	"github.com/google/uuid"
)

// Routing buckets for inbound stock units awaiting put-away.
const (
	BucketFreshReceipt = "fresh_receipt"
	BucketRTO          = "rto"
	BucketDTO          = "dto"
	BucketUnknown      = "unknown"
)

// ClassifiedUnit pairs a stock unit with its routing bucket and, for return
// units, the upstream order status that produced the decision.
type ClassifiedUnit struct {
	Unit        *models.StockUnit `json:"unit"`
	Bucket      string            `json:"bucket"`
	OrderStatus *string           `json:"order_status,omitempty"`
}

// ReturnIntakeInput registers one returned unit arriving at the dock.
type ReturnIntakeInput struct {
	Sku         string
	ProductName string
	StoreID     string
	OrderID     string
}

type ReturnsService interface {
	// ClassifyInbound routes every unit awaiting put-away. Read-only: the
	// units themselves are never touched.
	ClassifyInbound(ctx context.Context, limit, offset int) ([]*ClassifiedUnit, error)
	ClassifyUnit(ctx context.Context, id uuid.UUID) (*ClassifiedUnit, error)
	IntakeReturn(ctx context.Context, input *ReturnIntakeInput) (*models.StockUnit, error)
}

type returnsService struct {
	stockUnitRepo repositories.StockUnitRepository
	orderLookup   OrderStatusLookup
	audit         AuditLogsService
}

func NewReturnsService(stockUnitRepo repositories.StockUnitRepository, orderLookup OrderStatusLookup, audit AuditLogsService) ReturnsService {
	return &returnsService{stockUnitRepo: stockUnitRepo, orderLookup: orderLookup, audit: audit}
}

func (s *returnsService) ClassifyInbound(ctx context.Context, limit, offset int) ([]*ClassifiedUnit, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	units, err := s.stockUnitRepo.ListInbound(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	classified := make([]*ClassifiedUnit, 0, len(units))
	for _, unit := range units {
		classified = append(classified, s.classify(ctx, unit))
	}
	return classified, nil
}

func (s *returnsService) ClassifyUnit(ctx context.Context, id uuid.UUID) (*ClassifiedUnit, error) {
	unit, err := s.stockUnitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, common.NotFoundf("stock unit %s not found", id)
	}
	return s.classify(ctx, unit), nil
}

// classify never fails a unit: lookup errors and unrecognized statuses land
// in the unknown bucket for manual triage.
func (s *returnsService) classify(ctx context.Context, unit *models.StockUnit) *ClassifiedUnit {
	if unit.GRNID != nil {
		return &ClassifiedUnit{Unit: unit, Bucket: BucketFreshReceipt}
	}
	if !unit.FromReturn() {
		return &ClassifiedUnit{Unit: unit, Bucket: BucketUnknown}
	}

	status, err := s.orderLookup.Lookup(ctx, *unit.StoreID, *unit.OrderID)
	if err != nil {
		log.Printf("WARN: order lookup failed for unit %s (order %s): %v", unit.ID, *unit.OrderID, err)
		return &ClassifiedUnit{Unit: unit, Bucket: BucketUnknown}
	}
	if status == nil {
		return &ClassifiedUnit{Unit: unit, Bucket: BucketUnknown}
	}

	result := &ClassifiedUnit{Unit: unit, OrderStatus: &status.CustomStatus}
	switch status.CustomStatus {
	case "RTO Processed", "RTO Closed":
		result.Bucket = BucketRTO
	case "Pending Refunds", "DTO Refunded":
		result.Bucket = BucketDTO
	default:
		result.Bucket = BucketUnknown
	}
	return result
}

func (s *returnsService) IntakeReturn(ctx context.Context, input *ReturnIntakeInput) (*models.StockUnit, error) {
	if input.Sku == "" {
		return nil, common.Validationf("sku is required")
	}
	if input.ProductName == "" {
		return nil, common.Validationf("product name is required")
	}
	if input.StoreID == "" || input.OrderID == "" {
		return nil, common.Validationf("store id and order id are required for return intake")
	}

	putaway := models.PutawayInbound
	unit := &models.StockUnit{
		ID:          uuid.New(),
		Sku:         input.Sku,
		ProductName: input.ProductName,
		StoreID:     &input.StoreID,
		OrderID:     &input.OrderID,
		Putaway:     &putaway,
	}
	if err := s.stockUnitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, "stock_unit", unit.ID.String(), unit.Sku, models.ActionCreate, models.JSONB{
		"store_id": input.StoreID,
		"order_id": input.OrderID,
		"source":   "return_intake",
	})
	return unit, nil
}
