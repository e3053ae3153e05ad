package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PartyTypeSupplier = "supplier"
	PartyTypeCustomer = "customer"
	PartyTypeBoth     = "both"
)

// Party is a supplier/customer directory entry. Deletion is soft
// (active=false) and refused while any non-terminal purchase order
// references the party.
type Party struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	PartyType    string    `json:"party_type" db:"party_type"`
	ContactEmail *string   `json:"contact_email" db:"contact_email"`
	ContactPhone *string   `json:"contact_phone" db:"contact_phone"`
	Address      *string   `json:"address" db:"address"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CanSupply reports whether the party may be referenced as a PO supplier.
func (p *Party) CanSupply() bool {
	return p.Active && (p.PartyType == PartyTypeSupplier || p.PartyType == PartyTypeBoth)
}
