package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB represents a JSONB column, marshalled by pgx.
type JSONB map[string]interface{}

// Audit actions.
const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionMove    = "MOVE"
	ActionDelete  = "DELETE"
	ActionConfirm = "CONFIRM"
	ActionCancel  = "CANCEL"
	ActionClose   = "CLOSE"
	ActionReceive = "RECEIVE"
)

// AuditLog is one append-only event per state-changing operation. The engine
// only emits; display and querying belong to external consumers.
type AuditLog struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	EntityName string     `json:"entity_name" db:"entity_name"`
	Action     string     `json:"action" db:"action"`
	Changes    JSONB      `json:"changes" db:"changes"`
	ActorID    *uuid.UUID `json:"actor_id" db:"actor_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// AuditLogFilters narrows audit queries for the external consumer.
type AuditLogFilters struct {
	EntityType *string    `json:"entity_type"`
	EntityID   *string    `json:"entity_id"`
	Action     *string    `json:"action"`
	ActorID    *uuid.UUID `json:"actor_id"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}
