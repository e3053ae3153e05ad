package services

import (
	"context"
	"time"

	"godown/internal/common"
	"godown/internal/models"
	"godown/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderInput carries the user-editable fields of a new order.
type CreatePurchaseOrderInput struct {
	SupplierID   uuid.UUID
	WarehouseID  uuid.UUID
	Currency     string
	ExpectedDate *time.Time
	Lines        []PurchaseOrderLineInput
}

type PurchaseOrderLineInput struct {
	Sku         string
	ProductName string
	ExpectedQty int
	UnitCost    decimal.Decimal
}

type PurchaseOrdersService interface {
	CreatePurchaseOrder(ctx context.Context, input *CreatePurchaseOrderInput) (*models.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, status *string, limit, offset int) ([]*models.PurchaseOrder, error)
	ConfirmPurchaseOrder(ctx context.Context, id uuid.UUID) error
	CancelPurchaseOrder(ctx context.Context, id uuid.UUID, reason string) error
	ClosePurchaseOrder(ctx context.Context, id uuid.UUID) error

	// ApplyReceiptTx folds a completed receipt's accepted quantities into the
	// order inside the caller's transaction: locks the order row, bumps
	// received_qty per line, and re-derives the order status.
	ApplyReceiptTx(ctx context.Context, tx pgx.Tx, poID uuid.UUID, accepted map[string]int) (string, error)
}

type purchaseOrdersService struct {
	poRepo        repositories.PurchaseOrderRepository
	partyRepo     repositories.PartyRepository
	warehouseRepo repositories.WarehouseRepository
	audit         AuditLogsService
}

func NewPurchaseOrdersService(
	poRepo repositories.PurchaseOrderRepository,
	partyRepo repositories.PartyRepository,
	warehouseRepo repositories.WarehouseRepository,
	audit AuditLogsService,
) PurchaseOrdersService {
	return &purchaseOrdersService{
		poRepo:        poRepo,
		partyRepo:     partyRepo,
		warehouseRepo: warehouseRepo,
		audit:         audit,
	}
}

func (s *purchaseOrdersService) CreatePurchaseOrder(ctx context.Context, input *CreatePurchaseOrderInput) (*models.PurchaseOrder, error) {
	if len(input.Lines) == 0 {
		return nil, common.Validationf("purchase order needs at least one line")
	}
	if input.Currency == "" {
		return nil, common.Validationf("currency is required")
	}

	seen := make(map[string]bool, len(input.Lines))
	for _, line := range input.Lines {
		if line.Sku == "" {
			return nil, common.Validationf("line sku is required")
		}
		if line.ProductName == "" {
			return nil, common.Validationf("product name is required for sku %s", line.Sku)
		}
		if line.ExpectedQty <= 0 {
			return nil, common.Validationf("expected quantity for sku %s must be greater than 0", line.Sku)
		}
		if line.UnitCost.IsNegative() {
			return nil, common.Validationf("unit cost for sku %s must not be negative", line.Sku)
		}
		if seen[line.Sku] {
			return nil, common.Validationf("sku %s appears on more than one line", line.Sku)
		}
		seen[line.Sku] = true
	}

	supplier, err := s.partyRepo.GetByID(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, common.NotFoundf("supplier %s not found", input.SupplierID)
	}
	if !supplier.CanSupply() {
		return nil, common.Validationf("party %s cannot be used as a supplier", supplier.Name)
	}

	warehouse, err := s.warehouseRepo.GetByID(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, common.NotFoundf("warehouse %s not found", input.WarehouseID)
	}

	number, err := s.poRepo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}

	po := &models.PurchaseOrder{
		ID:          uuid.New(),
		Number:      number,
		SupplierID:  input.SupplierID,
		WarehouseID: input.WarehouseID,
		Currency:    input.Currency,
		Status:      models.POStatusDraft,
		TotalAmount: decimal.Zero,
	}
	po.ExpectedDate = input.ExpectedDate

	for _, line := range input.Lines {
		po.Items = append(po.Items, models.PurchaseOrderItem{
			ID:              uuid.New(),
			PurchaseOrderID: po.ID,
			Sku:             line.Sku,
			ProductName:     line.ProductName,
			ExpectedQty:     line.ExpectedQty,
			UnitCost:        line.UnitCost,
		})
		po.TotalAmount = po.TotalAmount.Add(line.UnitCost.Mul(decimal.NewFromInt(int64(line.ExpectedQty))))
	}

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, "purchase_order", po.ID.String(), po.Number, models.ActionCreate, models.JSONB{
		"supplier_id": po.SupplierID.String(),
		"lines":       len(po.Items),
		"total":       po.TotalAmount.String(),
	})
	return po, nil
}

func (s *purchaseOrdersService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, common.NotFoundf("purchase order %s not found", id)
	}
	return po, nil
}

func (s *purchaseOrdersService) ListPurchaseOrders(ctx context.Context, status *string, limit, offset int) ([]*models.PurchaseOrder, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.poRepo.List(ctx, status, limit, offset)
}

func (s *purchaseOrdersService) ConfirmPurchaseOrder(ctx context.Context, id uuid.UUID) error {
	po, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.poRepo.TransitionStatus(ctx, id, models.POStatusDraft, models.POStatusConfirmed, nil)
	if err != nil {
		return err
	}
	if !ok {
		return common.Conflictf("purchase order %s is %s, only draft orders can be confirmed", po.Number, po.Status)
	}

	s.audit.Emit(ctx, "purchase_order", id.String(), po.Number, models.ActionConfirm, nil)
	return nil
}

func (s *purchaseOrdersService) CancelPurchaseOrder(ctx context.Context, id uuid.UUID, reason string) error {
	if reason == "" {
		return common.Validationf("cancellation reason is required")
	}
	po, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return err
	}

	// Cancellation is allowed from draft or confirmed. Once goods have been
	// received against the order it can only be closed.
	from := po.Status
	if from != models.POStatusDraft && from != models.POStatusConfirmed {
		return common.Conflictf("purchase order %s is %s and can no longer be cancelled", po.Number, po.Status)
	}

	ok, err := s.poRepo.TransitionStatus(ctx, id, from, models.POStatusCancelled, &reason)
	if err != nil {
		return err
	}
	if !ok {
		return common.Conflictf("purchase order %s changed state concurrently", po.Number)
	}

	s.audit.Emit(ctx, "purchase_order", id.String(), po.Number, models.ActionCancel, models.JSONB{"reason": reason})
	return nil
}

func (s *purchaseOrdersService) ClosePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	po, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.poRepo.TransitionStatus(ctx, id, models.POStatusFullyReceived, models.POStatusClosed, nil)
	if err != nil {
		return err
	}
	if !ok {
		return common.Conflictf("purchase order %s is %s, only fully received orders can be closed", po.Number, po.Status)
	}

	s.audit.Emit(ctx, "purchase_order", id.String(), po.Number, models.ActionClose, nil)
	return nil
}

func (s *purchaseOrdersService) ApplyReceiptTx(ctx context.Context, tx pgx.Tx, poID uuid.UUID, accepted map[string]int) (string, error) {
	po := &models.PurchaseOrder{}
	lockQuery := `
		SELECT id, number, status
		FROM purchase_orders
		WHERE id = $1
		FOR UPDATE
	`
	err := tx.QueryRow(ctx, lockQuery, poID).Scan(&po.ID, &po.Number, &po.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", common.NotFoundf("purchase order %s not found", poID)
		}
		return "", err
	}

	// fully_received still accepts goods: a draft GRN opened while the order
	// was in flight may land after a sibling GRN fills the order, and the
	// surplus is tracked as over-receipt rather than refused.
	switch po.Status {
	case models.POStatusConfirmed, models.POStatusPartiallyReceived, models.POStatusFullyReceived:
	default:
		return "", common.Conflictf("purchase order %s is %s and cannot receive goods", po.Number, po.Status)
	}

	bumpQuery := `
		UPDATE purchase_order_items
		SET received_qty = received_qty + $1
		WHERE purchase_order_id = $2 AND sku = $3
	`
	for sku, qty := range accepted {
		if qty == 0 {
			continue
		}
		tag, err := tx.Exec(ctx, bumpQuery, qty, poID, sku)
		if err != nil {
			return "", err
		}
		if tag.RowsAffected() != 1 {
			return "", common.Validationf("sku %s is not on purchase order %s", sku, po.Number)
		}
	}

	itemsQuery := `
		SELECT expected_qty, received_qty
		FROM purchase_order_items
		WHERE purchase_order_id = $1
	`
	rows, err := tx.Query(ctx, itemsQuery, poID)
	if err != nil {
		return "", err
	}
	for rows.Next() {
		var item models.PurchaseOrderItem
		if err := rows.Scan(&item.ExpectedQty, &item.ReceivedQty); err != nil {
			rows.Close()
			return "", err
		}
		po.Items = append(po.Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}

	newStatus := po.DeriveStatus()
	if newStatus != po.Status {
		updateQuery := `UPDATE purchase_orders SET status = $1, updated_at = NOW() WHERE id = $2`
		if _, err := tx.Exec(ctx, updateQuery, newStatus, poID); err != nil {
			return "", err
		}
	}
	return newStatus, nil
}
