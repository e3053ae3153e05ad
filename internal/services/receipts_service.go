package services

import (
	"context"
	"errors"
	"fmt"

	"godown/internal/common"
	"godown/internal/models"
	"godown/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CreateGRNInput captures a delivery against one purchase order. A line's
// accepted quantity defaults to its received quantity when the split is not
// given at creation time.
type CreateGRNInput struct {
	PurchaseOrderID uuid.UUID
	Notes           *string
	Lines           []GRNLineInput
}

type GRNLineInput struct {
	Sku             string
	ReceivedQty     int
	AcceptedQty     *int
	RejectionReason *string
}

// ShelfAssignment routes part of one sku's accepted quantity to a shelf.
type ShelfAssignment struct {
	Sku      string
	ShelfID  uuid.UUID
	Quantity int
}

// CreateGRNResult carries the draft plus any over-receipt warnings. Warnings
// never block creation; over-receipt is allowed and tracked.
type CreateGRNResult struct {
	GRN      *models.GRN
	Warnings []string
}

type ReceiptsService interface {
	CreateGRN(ctx context.Context, input *CreateGRNInput) (*CreateGRNResult, error)
	GetGRN(ctx context.Context, id uuid.UUID) (*models.GRN, error)
	ListGRNs(ctx context.Context, status *string, limit, offset int) ([]*models.GRN, error)
	ListGRNsByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]*models.GRN, error)
	// UpdateGRNLines re-splits accepted versus rejected quantities on a draft.
	UpdateGRNLines(ctx context.Context, grnID uuid.UUID, lines []GRNLineInput) error
	// PerformReceipt completes a draft GRN atomically: shelves the accepted
	// goods, mints stock units, folds quantities into the purchase order and
	// marks the GRN completed. Runs in one transaction; a failure anywhere
	// leaves no trace.
	PerformReceipt(ctx context.Context, grnID uuid.UUID, assignments []ShelfAssignment) (*models.GRN, error)
	CancelGRN(ctx context.Context, id uuid.UUID, reason string) error
}

type receiptsService struct {
	db        repositories.Database
	grnRepo   repositories.GRNRepository
	poRepo    repositories.PurchaseOrderRepository
	poService PurchaseOrdersService
	audit     AuditLogsService
}

func NewReceiptsService(
	db repositories.Database,
	grnRepo repositories.GRNRepository,
	poRepo repositories.PurchaseOrderRepository,
	poService PurchaseOrdersService,
	audit AuditLogsService,
) ReceiptsService {
	return &receiptsService{
		db:        db,
		grnRepo:   grnRepo,
		poRepo:    poRepo,
		poService: poService,
		audit:     audit,
	}
}

func (s *receiptsService) CreateGRN(ctx context.Context, input *CreateGRNInput) (*CreateGRNResult, error) {
	if len(input.Lines) == 0 {
		return nil, common.Validationf("goods receipt needs at least one line")
	}

	po, err := s.poRepo.GetByID(ctx, input.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, common.NotFoundf("purchase order %s not found", input.PurchaseOrderID)
	}
	if po.Status != models.POStatusConfirmed && po.Status != models.POStatusPartiallyReceived {
		return nil, common.Conflictf("purchase order %s is %s and cannot receive goods", po.Number, po.Status)
	}

	poItems := make(map[string]*models.PurchaseOrderItem, len(po.Items))
	for i := range po.Items {
		poItems[po.Items[i].Sku] = &po.Items[i]
	}

	number, err := s.grnRepo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}

	grn := &models.GRN{
		ID:              uuid.New(),
		Number:          number,
		PurchaseOrderID: po.ID,
		PONumber:        po.Number,
		WarehouseID:     po.WarehouseID,
		Status:          models.GRNStatusDraft,
		Notes:           input.Notes,
	}

	var warnings []string
	seen := make(map[string]bool, len(input.Lines))
	for _, line := range input.Lines {
		if line.ReceivedQty <= 0 {
			return nil, common.Validationf("received quantity for sku %s must be greater than 0", line.Sku)
		}
		if seen[line.Sku] {
			return nil, common.Validationf("sku %s appears on more than one line", line.Sku)
		}
		seen[line.Sku] = true

		poItem, onOrder := poItems[line.Sku]
		if !onOrder {
			return nil, common.Validationf("sku %s is not on purchase order %s", line.Sku, po.Number)
		}

		item := models.GRNItem{
			ID:          uuid.New(),
			GRNID:       grn.ID,
			Sku:         line.Sku,
			ProductName: poItem.ProductName,
			ReceivedQty: line.ReceivedQty,
			AcceptedQty: line.ReceivedQty,
			UnitCost:    poItem.UnitCost,
		}
		if line.AcceptedQty != nil {
			item.AcceptedQty = *line.AcceptedQty
			item.RejectedQty = line.ReceivedQty - *line.AcceptedQty
			item.RejectionReason = line.RejectionReason
		}
		if err := validateSplit(&item); err != nil {
			return nil, err
		}

		if remaining := poItem.RemainingQty(); line.ReceivedQty > remaining {
			warnings = append(warnings, fmt.Sprintf("sku %s: received %d exceeds remaining %d on %s", line.Sku, line.ReceivedQty, remaining, po.Number))
		}
		grn.Items = append(grn.Items, item)
	}

	if err := s.grnRepo.Create(ctx, grn); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, "grn", grn.ID.String(), grn.Number, models.ActionCreate, models.JSONB{
		"purchase_order": po.Number,
		"lines":          len(grn.Items),
	})
	return &CreateGRNResult{GRN: grn, Warnings: warnings}, nil
}

func validateSplit(item *models.GRNItem) error {
	if item.AcceptedQty < 0 || item.AcceptedQty > item.ReceivedQty {
		return common.Validationf("accepted quantity for sku %s must be between 0 and %d", item.Sku, item.ReceivedQty)
	}
	if item.RejectedQty != item.ReceivedQty-item.AcceptedQty {
		return common.Validationf("rejected quantity for sku %s must equal received minus accepted", item.Sku)
	}
	if item.RejectedQty > 0 && (item.RejectionReason == nil || *item.RejectionReason == "") {
		return common.Validationf("rejection reason is required for sku %s", item.Sku)
	}
	return nil
}

func (s *receiptsService) GetGRN(ctx context.Context, id uuid.UUID) (*models.GRN, error) {
	grn, err := s.grnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if grn == nil {
		return nil, common.NotFoundf("goods receipt %s not found", id)
	}
	return grn, nil
}

func (s *receiptsService) ListGRNs(ctx context.Context, status *string, limit, offset int) ([]*models.GRN, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.grnRepo.List(ctx, status, limit, offset)
}

func (s *receiptsService) ListGRNsByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]*models.GRN, error) {
	return s.grnRepo.ListByPurchaseOrder(ctx, poID)
}

func (s *receiptsService) UpdateGRNLines(ctx context.Context, grnID uuid.UUID, lines []GRNLineInput) error {
	grn, err := s.GetGRN(ctx, grnID)
	if err != nil {
		return err
	}
	if grn.Status != models.GRNStatusDraft {
		return common.Conflictf("goods receipt %s is %s, only drafts can be edited", grn.Number, grn.Status)
	}

	existing := make(map[string]*models.GRNItem, len(grn.Items))
	for i := range grn.Items {
		existing[grn.Items[i].Sku] = &grn.Items[i]
	}

	// Every line is validated before anything is written; the batch then
	// lands in one transaction so the draft is never half-edited.
	splits := make([]models.GRNItemSplit, 0, len(lines))
	for _, line := range lines {
		item, ok := existing[line.Sku]
		if !ok {
			return common.Validationf("sku %s is not on goods receipt %s", line.Sku, grn.Number)
		}
		if line.AcceptedQty == nil {
			return common.Validationf("accepted quantity is required for sku %s", line.Sku)
		}

		// The received quantity is fixed at creation; edits only move the
		// accept/reject split.
		updated := models.GRNItem{
			Sku:             line.Sku,
			ReceivedQty:     item.ReceivedQty,
			AcceptedQty:     *line.AcceptedQty,
			RejectedQty:     item.ReceivedQty - *line.AcceptedQty,
			RejectionReason: line.RejectionReason,
		}
		if err := validateSplit(&updated); err != nil {
			return err
		}
		splits = append(splits, models.GRNItemSplit{
			Sku:             updated.Sku,
			AcceptedQty:     updated.AcceptedQty,
			RejectedQty:     updated.RejectedQty,
			RejectionReason: updated.RejectionReason,
		})
	}

	ok, err := s.grnRepo.UpdateItemSplits(ctx, grnID, splits)
	if err != nil {
		return err
	}
	if !ok {
		return common.Conflictf("goods receipt %s changed concurrently", grn.Number)
	}

	s.audit.Emit(ctx, "grn", grnID.String(), grn.Number, models.ActionUpdate, models.JSONB{"lines": len(lines)})
	return nil
}

func (s *receiptsService) PerformReceipt(ctx context.Context, grnID uuid.UUID, assignments []ShelfAssignment) (*models.GRN, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	grn, err := s.performReceiptTx(ctx, tx, grnID, assignments)
	if err != nil {
		return nil, mapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapTxError(err)
	}

	s.audit.Emit(ctx, "grn", grn.ID.String(), grn.Number, models.ActionReceive, models.JSONB{
		"purchase_order": grn.PONumber,
		"lines":          len(grn.Items),
	})
	return grn, nil
}

func (s *receiptsService) performReceiptTx(ctx context.Context, tx pgx.Tx, grnID uuid.UUID, assignments []ShelfAssignment) (*models.GRN, error) {
	grn := &models.GRN{}

	// The row lock serializes competing completions of the same GRN. The
	// loser of the race sees a non-draft status after the winner commits.
	lockQuery := `
		SELECT id, number, purchase_order_id, po_number, warehouse_id, status, notes
		FROM grns
		WHERE id = $1
		FOR UPDATE
	`
	err := tx.QueryRow(ctx, lockQuery, grnID).Scan(&grn.ID, &grn.Number, &grn.PurchaseOrderID, &grn.PONumber, &grn.WarehouseID, &grn.Status, &grn.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("goods receipt %s not found", grnID)
		}
		return nil, err
	}
	if grn.Status != models.GRNStatusDraft {
		return nil, common.Conflictf("goods receipt %s is %s and cannot be completed", grn.Number, grn.Status)
	}

	itemsQuery := `
		SELECT id, grn_id, sku, product_name, received_qty, accepted_qty, rejected_qty, rejection_reason, unit_cost
		FROM grn_items
		WHERE grn_id = $1
		ORDER BY sku
	`
	rows, err := tx.Query(ctx, itemsQuery, grnID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var item models.GRNItem
		if err := rows.Scan(&item.ID, &item.GRNID, &item.Sku, &item.ProductName, &item.ReceivedQty, &item.AcceptedQty, &item.RejectedQty, &item.RejectionReason, &item.UnitCost); err != nil {
			rows.Close()
			return nil, err
		}
		grn.Items = append(grn.Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items := make(map[string]*models.GRNItem, len(grn.Items))
	for i := range grn.Items {
		items[grn.Items[i].Sku] = &grn.Items[i]
	}

	// Per-sku assignment totals must cover exactly the accepted quantity.
	// Rejected goods are never shelved.
	assigned := make(map[string]int, len(items))
	for _, a := range assignments {
		if a.Quantity <= 0 {
			return nil, common.Validationf("placement quantity for sku %s must be greater than 0", a.Sku)
		}
		if _, ok := items[a.Sku]; !ok {
			return nil, common.Validationf("sku %s is not on goods receipt %s", a.Sku, grn.Number)
		}
		assigned[a.Sku] += a.Quantity
	}
	for sku, item := range items {
		if assigned[sku] != item.AcceptedQty {
			return nil, common.Validationf("placements for sku %s cover %d of %d accepted", sku, assigned[sku], item.AcceptedQty)
		}
	}

	shelves, err := s.resolveShelvesTx(ctx, tx, grn, assignments)
	if err != nil {
		return nil, err
	}

	placementQuery := `
		INSERT INTO grn_item_placements (id, grn_item_id, shelf_id, quantity)
		VALUES ($1, $2, $3, $4)
	`
	upsertQuery := `
		INSERT INTO placements (id, shelf_id, sku, product_name, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (shelf_id, sku)
		DO UPDATE SET quantity = placements.quantity + EXCLUDED.quantity, updated_at = NOW()
	`
	unitQuery := `
		INSERT INTO stock_units (id, sku, product_name, grn_id, putaway_status, warehouse_id, zone_id, rack_id, shelf_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	for _, a := range assignments {
		item := items[a.Sku]
		shelf := shelves[a.ShelfID]

		if _, err := tx.Exec(ctx, placementQuery, uuid.New(), item.ID, a.ShelfID, a.Quantity); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, upsertQuery, uuid.New(), a.ShelfID, a.Sku, item.ProductName, a.Quantity); err != nil {
			return nil, err
		}
		for n := 0; n < a.Quantity; n++ {
			if _, err := tx.Exec(ctx, unitQuery, uuid.New(), a.Sku, item.ProductName, grn.ID, models.PutawayInbound, shelf.WarehouseID, shelf.ZoneID, shelf.RackID, shelf.ID); err != nil {
				return nil, err
			}
		}
		item.Placements = append(item.Placements, models.GRNPlacement{ItemID: item.ID, ShelfID: a.ShelfID, Quantity: a.Quantity})
	}

	accepted := make(map[string]int, len(items))
	for sku, item := range items {
		accepted[sku] = item.AcceptedQty
	}
	if _, err := s.poService.ApplyReceiptTx(ctx, tx, grn.PurchaseOrderID, accepted); err != nil {
		return nil, err
	}

	var receivedBy *uuid.UUID
	if actor, ok := common.ActorIDFromContext(ctx); ok {
		receivedBy = &actor
	}
	completeQuery := `
		UPDATE grns
		SET status = $1, received_at = NOW(), received_by = $2, updated_at = NOW()
		WHERE id = $3
	`
	if _, err := tx.Exec(ctx, completeQuery, models.GRNStatusCompleted, receivedBy, grnID); err != nil {
		return nil, err
	}

	grn.Status = models.GRNStatusCompleted
	grn.ReceivedBy = receivedBy
	return grn, nil
}

// resolveShelvesTx loads every referenced shelf inside the transaction and
// checks it belongs to the GRN's warehouse.
func (s *receiptsService) resolveShelvesTx(ctx context.Context, tx pgx.Tx, grn *models.GRN, assignments []ShelfAssignment) (map[uuid.UUID]*models.Shelf, error) {
	shelves := make(map[uuid.UUID]*models.Shelf, len(assignments))
	query := `
		SELECT id, rack_id, zone_id, warehouse_id, code
		FROM shelves
		WHERE id = $1
	`
	for _, a := range assignments {
		if _, done := shelves[a.ShelfID]; done {
			continue
		}
		shelf := &models.Shelf{}
		err := tx.QueryRow(ctx, query, a.ShelfID).Scan(&shelf.ID, &shelf.RackID, &shelf.ZoneID, &shelf.WarehouseID, &shelf.Code)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, common.NotFoundf("shelf %s not found", a.ShelfID)
			}
			return nil, err
		}
		if shelf.WarehouseID != grn.WarehouseID {
			return nil, common.Validationf("shelf %s is not in the receiving warehouse", shelf.Code)
		}
		shelves[a.ShelfID] = shelf
	}
	return shelves, nil
}

// mapTxError converts postgres serialization and deadlock failures into the
// retryable abort kind. Everything else passes through.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return common.Abortf("receipt transaction aborted, retry the request")
		}
	}
	return err
}

// CancelGRN voids a draft receipt. The reason is optional, unlike purchase
// order cancellation.
func (s *receiptsService) CancelGRN(ctx context.Context, id uuid.UUID, reason string) error {
	grn, err := s.GetGRN(ctx, id)
	if err != nil {
		return err
	}

	var reasonPtr *string
	changes := models.JSONB{}
	if reason != "" {
		reasonPtr = &reason
		changes["reason"] = reason
	}

	ok, err := s.grnRepo.CancelDraft(ctx, id, reasonPtr)
	if err != nil {
		return err
	}
	if !ok {
		return common.Conflictf("goods receipt %s is %s, only drafts can be cancelled", grn.Number, grn.Status)
	}

	s.audit.Emit(ctx, "grn", id.String(), grn.Number, models.ActionCancel, changes)
	return nil
}
