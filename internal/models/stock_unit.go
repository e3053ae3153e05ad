package models

import (
	"time"

	"github.com/google/uuid"
)

// Put-away states. A nil state means shelved or dispatched.
const (
	PutawayInbound  = "inbound"
	PutawayOutbound = "outbound"
)

// StockUnit is one trackable unit of inventory. Forward units are created by
// completing a GRN (one per accepted quantity, GRNID set); reverse units come
// from return intake (StoreID+OrderID set). Only data-retention processes
// destroy them.
type StockUnit struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Sku         string     `json:"sku" db:"sku"`
	ProductName string     `json:"product_name" db:"product_name"`
	StoreID     *string    `json:"store_id" db:"store_id"`
	OrderID     *string    `json:"order_id" db:"order_id"`
	GRNID       *uuid.UUID `json:"grn_id" db:"grn_id"`
	Putaway     *string    `json:"putaway_status" db:"putaway_status"`
	WarehouseID *uuid.UUID `json:"warehouse_id" db:"warehouse_id"`
	ZoneID      *uuid.UUID `json:"zone_id" db:"zone_id"`
	RackID      *uuid.UUID `json:"rack_id" db:"rack_id"`
	ShelfID     *uuid.UUID `json:"shelf_id" db:"shelf_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// FromReturn reports whether the unit came in through the reverse flow.
func (u *StockUnit) FromReturn() bool {
	return u.GRNID == nil && u.StoreID != nil && u.OrderID != nil
}
