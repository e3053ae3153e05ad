package repositories

import (
	"context"
	"errors"
	"fmt"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type GRNRepository interface {
	Create(ctx context.Context, grn *models.GRN) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GRN, error)
	ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]*models.GRN, error)
	List(ctx context.Context, status *string, limit, offset int) ([]*models.GRN, error)
	// UpdateItemSplits applies a batch of accept/reject edits in one
	// transaction, so a draft is never left half-edited.
	UpdateItemSplits(ctx context.Context, grnID uuid.UUID, splits []models.GRNItemSplit) (bool, error)
	// CancelDraft cancels the GRN iff it is still draft.
	CancelDraft(ctx context.Context, id uuid.UUID, reason *string) (bool, error)
	NextNumber(ctx context.Context) (string, error)
}

type grnRepo struct {
	db Database
}

func NewGRNRepository(db Database) GRNRepository {
	return &grnRepo{db: db}
}

// Create inserts the GRN and its items in one transaction. Placements are
// written later, inside the receipt transaction.
func (r *grnRepo) Create(ctx context.Context, grn *models.GRN) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO grns (id, number, purchase_order_id, po_number, warehouse_id, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, query, grn.ID, grn.Number, grn.PurchaseOrderID, grn.PONumber, grn.WarehouseID, grn.Status, grn.Notes)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO grn_items (id, grn_id, sku, product_name, received_qty, accepted_qty, rejected_qty, rejection_reason, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i := range grn.Items {
		item := &grn.Items[i]
		if _, err := tx.Exec(ctx, itemQuery, item.ID, item.GRNID, item.Sku, item.ProductName, item.ReceivedQty, item.AcceptedQty, item.RejectedQty, item.RejectionReason, item.UnitCost); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *grnRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.GRN, error) {
	grn := &models.GRN{}
	query := `
		SELECT id, number, purchase_order_id, po_number, warehouse_id, status, notes, cancel_reason, received_at, received_by, created_at, updated_at
		FROM grns
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&grn.ID, &grn.Number, &grn.PurchaseOrderID, &grn.PONumber, &grn.WarehouseID, &grn.Status, &grn.Notes, &grn.CancelReason, &grn.ReceivedAt, &grn.ReceivedBy, &grn.CreatedAt, &grn.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.itemsByGRN(ctx, id)
	if err != nil {
		return nil, err
	}
	grn.Items = items
	return grn, nil
}

func (r *grnRepo) itemsByGRN(ctx context.Context, grnID uuid.UUID) ([]models.GRNItem, error) {
	query := `
		SELECT id, grn_id, sku, product_name, received_qty, accepted_qty, rejected_qty, rejection_reason, unit_cost
		FROM grn_items
		WHERE grn_id = $1
		ORDER BY sku
	`
	rows, err := r.db.Query(ctx, query, grnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.GRNItem
	for rows.Next() {
		var item models.GRNItem
		if err := rows.Scan(&item.ID, &item.GRNID, &item.Sku, &item.ProductName, &item.ReceivedQty, &item.AcceptedQty, &item.RejectedQty, &item.RejectionReason, &item.UnitCost); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		placements, err := r.placementsByItem(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Placements = placements
	}
	return items, nil
}

func (r *grnRepo) placementsByItem(ctx context.Context, itemID uuid.UUID) ([]models.GRNPlacement, error) {
	query := `
		SELECT id, grn_item_id, shelf_id, quantity
		FROM grn_item_placements
		WHERE grn_item_id = $1
	`
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var placements []models.GRNPlacement
	for rows.Next() {
		var p models.GRNPlacement
		if err := rows.Scan(&p.ID, &p.ItemID, &p.ShelfID, &p.Quantity); err != nil {
			return nil, err
		}
		placements = append(placements, p)
	}
	return placements, rows.Err()
}

func (r *grnRepo) ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]*models.GRN, error) {
	query := `
		SELECT id, number, purchase_order_id, po_number, warehouse_id, status, notes, cancel_reason, received_at, received_by, created_at, updated_at
		FROM grns
		WHERE purchase_order_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGRNs(rows)
}

func (r *grnRepo) List(ctx context.Context, status *string, limit, offset int) ([]*models.GRN, error) {
	query := `
		SELECT id, number, purchase_order_id, po_number, warehouse_id, status, notes, cancel_reason, received_at, received_by, created_at, updated_at
		FROM grns
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGRNs(rows)
}

func scanGRNs(rows pgx.Rows) ([]*models.GRN, error) {
	var grns []*models.GRN
	for rows.Next() {
		grn := &models.GRN{}
		if err := rows.Scan(&grn.ID, &grn.Number, &grn.PurchaseOrderID, &grn.PONumber, &grn.WarehouseID, &grn.Status, &grn.Notes, &grn.CancelReason, &grn.ReceivedAt, &grn.ReceivedBy, &grn.CreatedAt, &grn.UpdatedAt); err != nil {
			return nil, err
		}
		grns = append(grns, grn)
	}
	return grns, rows.Err()
}

func (r *grnRepo) UpdateItemSplits(ctx context.Context, grnID uuid.UUID, splits []models.GRNItemSplit) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE grn_items
		SET accepted_qty = $1, rejected_qty = $2, rejection_reason = $3
		WHERE grn_id = $4 AND sku = $5
	`
	for _, split := range splits {
		tag, err := tx.Exec(ctx, query, split.AcceptedQty, split.RejectedQty, split.RejectionReason, grnID, split.Sku)
		if err != nil {
			return false, err
		}
		if tag.RowsAffected() != 1 {
			return false, nil
		}
	}
	return true, tx.Commit(ctx)
}

func (r *grnRepo) CancelDraft(ctx context.Context, id uuid.UUID, reason *string) (bool, error) {
	query := `
		UPDATE grns
		SET status = $1, cancel_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`
	tag, err := r.db.Exec(ctx, query, models.GRNStatusCancelled, reason, id, models.GRNStatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *grnRepo) NextNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('grn_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("GRN-%06d", seq), nil
}
