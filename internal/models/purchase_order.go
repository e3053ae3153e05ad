package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase order statuses. Only draft→confirmed, →cancelled and
// fully_received→closed are user-initiated; the received states are derived
// from line totals after each completed receipt.
const (
	POStatusDraft             = "draft"
	POStatusConfirmed         = "confirmed"
	POStatusPartiallyReceived = "partially_received"
	POStatusFullyReceived     = "fully_received"
	POStatusClosed            = "closed"
	POStatusCancelled         = "cancelled"
)

type PurchaseOrder struct {
	ID           uuid.UUID           `json:"id" db:"id"`
	Number       string              `json:"number" db:"number"`
	SupplierID   uuid.UUID           `json:"supplier_id" db:"supplier_id"`
	WarehouseID  uuid.UUID           `json:"warehouse_id" db:"warehouse_id"`
	Currency     string              `json:"currency" db:"currency"`
	ExpectedDate *time.Time          `json:"expected_date" db:"expected_date"`
	Status       string              `json:"status" db:"status"`
	CancelReason *string             `json:"cancel_reason" db:"cancel_reason"`
	TotalAmount  decimal.Decimal     `json:"total_amount" db:"total_amount"`
	Items        []PurchaseOrderItem `json:"items" db:"-"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
}

// PurchaseOrderItem tracks expected versus received quantity per sku.
// ReceivedQty only ever increases, driven by completed GRNs; over-receipt is
// allowed and tracked.
type PurchaseOrderItem struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id" db:"purchase_order_id"`
	Sku             string          `json:"sku" db:"sku"`
	ProductName     string          `json:"product_name" db:"product_name"`
	ExpectedQty     int             `json:"expected_qty" db:"expected_qty"`
	ReceivedQty     int             `json:"received_qty" db:"received_qty"`
	UnitCost        decimal.Decimal `json:"unit_cost" db:"unit_cost"`
}

// RemainingQty is the quantity still expected at GRN creation time.
func (i *PurchaseOrderItem) RemainingQty() int {
	remaining := i.ExpectedQty - i.ReceivedQty
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DeriveStatus recomputes the received state from line totals. Returns the
// current status unchanged for orders outside the receiving flow.
func (po *PurchaseOrder) DeriveStatus() string {
	if po.Status == POStatusClosed || po.Status == POStatusCancelled || po.Status == POStatusDraft {
		return po.Status
	}
	allReceived := len(po.Items) > 0
	anyReceived := false
	for _, item := range po.Items {
		if item.ReceivedQty < item.ExpectedQty {
			allReceived = false
		}
		if item.ReceivedQty > 0 {
			anyReceived = true
		}
	}
	switch {
	case allReceived:
		return POStatusFullyReceived
	case anyReceived:
		return POStatusPartiallyReceived
	default:
		return POStatusConfirmed
	}
}
