package repositories

import (
	"context"
	"errors"
	"fmt"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *models.PurchaseOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, status *string, limit, offset int) ([]*models.PurchaseOrder, error)
	// TransitionStatus performs a guarded status change and reports whether
	// the row was in the expected source state.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, reason *string) (bool, error)
	NextNumber(ctx context.Context) (string, error)
}

type purchaseOrderRepo struct {
	db Database
}

func NewPurchaseOrderRepository(db Database) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

// Create inserts the order and its items in one transaction.
func (r *purchaseOrderRepo) Create(ctx context.Context, po *models.PurchaseOrder) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO purchase_orders (id, number, supplier_id, warehouse_id, currency, expected_date, status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, query, po.ID, po.Number, po.SupplierID, po.WarehouseID, po.Currency, po.ExpectedDate, po.Status, po.TotalAmount)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO purchase_order_items (id, purchase_order_id, sku, product_name, expected_qty, received_qty, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range po.Items {
		item := &po.Items[i]
		if _, err := tx.Exec(ctx, itemQuery, item.ID, item.PurchaseOrderID, item.Sku, item.ProductName, item.ExpectedQty, item.ReceivedQty, item.UnitCost); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *purchaseOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	po := &models.PurchaseOrder{}
	query := `
		SELECT id, number, supplier_id, warehouse_id, currency, expected_date, status, cancel_reason, total_amount, created_at, updated_at
		FROM purchase_orders
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&po.ID, &po.Number, &po.SupplierID, &po.WarehouseID, &po.Currency, &po.ExpectedDate, &po.Status, &po.CancelReason, &po.TotalAmount, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.itemsByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return po, nil
}

func (r *purchaseOrderRepo) itemsByOrder(ctx context.Context, poID uuid.UUID) ([]models.PurchaseOrderItem, error) {
	query := `
		SELECT id, purchase_order_id, sku, product_name, expected_qty, received_qty, unit_cost
		FROM purchase_order_items
		WHERE purchase_order_id = $1
		ORDER BY sku
	`
	rows, err := r.db.Query(ctx, query, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.PurchaseOrderItem
	for rows.Next() {
		var item models.PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.Sku, &item.ProductName, &item.ExpectedQty, &item.ReceivedQty, &item.UnitCost); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *purchaseOrderRepo) List(ctx context.Context, status *string, limit, offset int) ([]*models.PurchaseOrder, error) {
	query := `
		SELECT id, number, supplier_id, warehouse_id, currency, expected_date, status, cancel_reason, total_amount, created_at, updated_at
		FROM purchase_orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.PurchaseOrder
	for rows.Next() {
		po := &models.PurchaseOrder{}
		if err := rows.Scan(&po.ID, &po.Number, &po.SupplierID, &po.WarehouseID, &po.Currency, &po.ExpectedDate, &po.Status, &po.CancelReason, &po.TotalAmount, &po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

// TransitionStatus is the single-statement guard behind confirm/cancel/close.
// A zero row count means the order was not in the expected source state.
func (r *purchaseOrderRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string, reason *string) (bool, error) {
	query := `
		UPDATE purchase_orders
		SET status = $1, cancel_reason = COALESCE($2, cancel_reason), updated_at = NOW()
		WHERE id = $3 AND status = $4
	`
	tag, err := r.db.Exec(ctx, query, to, reason, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *purchaseOrderRepo) NextNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('po_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%06d", seq), nil
}
