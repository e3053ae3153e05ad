package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	GRNStatusDraft     = "draft"
	GRNStatusCompleted = "completed"
	GRNStatusCancelled = "cancelled"
)

// GRN is a goods receipt note raised against exactly one purchase order.
// PONumber and WarehouseID are snapshots captured at creation for display
// stability even if the order is later edited.
type GRN struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Number          string     `json:"number" db:"number"`
	PurchaseOrderID uuid.UUID  `json:"purchase_order_id" db:"purchase_order_id"`
	PONumber        string     `json:"po_number" db:"po_number"`
	WarehouseID     uuid.UUID  `json:"warehouse_id" db:"warehouse_id"`
	Status          string     `json:"status" db:"status"`
	Notes           *string    `json:"notes" db:"notes"`
	CancelReason    *string    `json:"cancel_reason" db:"cancel_reason"`
	ReceivedAt      *time.Time `json:"received_at" db:"received_at"`
	ReceivedBy      *uuid.UUID `json:"received_by" db:"received_by"`
	Items           []GRNItem  `json:"items" db:"-"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// GRNItem invariant: rejectedQty = receivedQty - acceptedQty >= 0, and a
// rejection reason is mandatory once rejectedQty > 0. Rejected units are
// never placed and never become stock units.
type GRNItem struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	GRNID           uuid.UUID       `json:"grn_id" db:"grn_id"`
	Sku             string          `json:"sku" db:"sku"`
	ProductName     string          `json:"product_name" db:"product_name"`
	ReceivedQty     int             `json:"received_qty" db:"received_qty"`
	AcceptedQty     int             `json:"accepted_qty" db:"accepted_qty"`
	RejectedQty     int             `json:"rejected_qty" db:"rejected_qty"`
	RejectionReason *string         `json:"rejection_reason" db:"rejection_reason"`
	UnitCost        decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	Placements      []GRNPlacement  `json:"placements" db:"-"`
}

// GRNItemSplit is one line's accept/reject edit on a draft GRN.
type GRNItemSplit struct {
	Sku             string
	AcceptedQty     int
	RejectedQty     int
	RejectionReason *string
}

// GRNPlacement records where an accepted quantity was shelved. For a
// completed GRN the quantities per item sum to that item's acceptedQty.
type GRNPlacement struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ItemID   uuid.UUID `json:"grn_item_id" db:"grn_item_id"`
	ShelfID  uuid.UUID `json:"shelf_id" db:"shelf_id"`
	Quantity int       `json:"quantity" db:"quantity"`
}
