package repositories

import (
	"context"
	"errors"

	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PartyRepository interface {
	Create(ctx context.Context, party *models.Party) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
	Update(ctx context.Context, party *models.Party) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Party, error)
	HasOpenPurchaseOrders(ctx context.Context, id uuid.UUID) (bool, error)
}

type partyRepo struct {
	db Database
}

func NewPartyRepository(db Database) PartyRepository {
	return &partyRepo{db: db}
}

func (r *partyRepo) Create(ctx context.Context, party *models.Party) error {
	query := `
		INSERT INTO parties (id, name, party_type, contact_email, contact_phone, address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, party.ID, party.Name, party.PartyType, party.ContactEmail, party.ContactPhone, party.Address, party.Active)
	return err
}

func (r *partyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	party := &models.Party{}
	query := `
		SELECT id, name, party_type, contact_email, contact_phone, address, active, created_at, updated_at
		FROM parties
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&party.ID, &party.Name, &party.PartyType, &party.ContactEmail, &party.ContactPhone, &party.Address, &party.Active, &party.CreatedAt, &party.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return party, nil
}

func (r *partyRepo) Update(ctx context.Context, party *models.Party) error {
	query := `
		UPDATE parties
		SET name = $1, party_type = $2, contact_email = $3, contact_phone = $4, address = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, party.Name, party.PartyType, party.ContactEmail, party.ContactPhone, party.Address, party.ID)
	return err
}

// Deactivate is the soft delete. Rows are never removed.
func (r *partyRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE parties SET active = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *partyRepo) List(ctx context.Context, limit, offset int) ([]*models.Party, error) {
	query := `
		SELECT id, name, party_type, contact_email, contact_phone, address, active, created_at, updated_at
		FROM parties
		WHERE active = TRUE
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []*models.Party
	for rows.Next() {
		party := &models.Party{}
		if err := rows.Scan(&party.ID, &party.Name, &party.PartyType, &party.ContactEmail, &party.ContactPhone, &party.Address, &party.Active, &party.CreatedAt, &party.UpdatedAt); err != nil {
			return nil, err
		}
		parties = append(parties, party)
	}
	return parties, rows.Err()
}

// HasOpenPurchaseOrders reports whether any non-terminal purchase order still
// references the party. Such a party cannot be deactivated.
func (r *partyRepo) HasOpenPurchaseOrders(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM purchase_orders
			WHERE supplier_id = $1 AND status NOT IN ('closed', 'cancelled')
		)
	`
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
