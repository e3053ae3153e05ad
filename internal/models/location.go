package models

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse is the root of the storage hierarchy. Code is assigned once at
// creation and never mutated; rename only changes Name.
type Warehouse struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	Address   *string   `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Zone struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WarehouseID uuid.UUID `json:"warehouse_id" db:"warehouse_id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Rack stores both its zone and the zone's warehouse so the node can be
// relocated without rewriting descendants.
type Rack struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ZoneID      uuid.UUID `json:"zone_id" db:"zone_id"`
	WarehouseID uuid.UUID `json:"warehouse_id" db:"warehouse_id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Shelf struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RackID      uuid.UUID `json:"rack_id" db:"rack_id"`
	ZoneID      uuid.UUID `json:"zone_id" db:"zone_id"`
	WarehouseID uuid.UUID `json:"warehouse_id" db:"warehouse_id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Position    int       `json:"position" db:"position"`
	Capacity    *int      `json:"capacity" db:"capacity"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Placement is the quantity of one sku sitting on one shelf. Unique per
// shelf+sku; receipts increment the row instead of duplicating it.
type Placement struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ShelfID     uuid.UUID `json:"shelf_id" db:"shelf_id"`
	Sku         string    `json:"sku" db:"sku"`
	ProductName string    `json:"product_name" db:"product_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// WarehouseStats are the denormalized child counts recomputed on every
// structural change. Reads are eventually consistent.
type WarehouseStats struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Zones       int       `json:"zones"`
	Racks       int       `json:"racks"`
	Shelves     int       `json:"shelves"`
	Products    int       `json:"products"`
}
