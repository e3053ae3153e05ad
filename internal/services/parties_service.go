package services

import (
	"context"

	"godown/internal/common"
	"godown/internal/models"
	"godown/internal/repositories"

	"github.com/google/uuid"
)

type PartiesService interface {
	CreateParty(ctx context.Context, party *models.Party) (*models.Party, error)
	GetParty(ctx context.Context, id uuid.UUID) (*models.Party, error)
	UpdateParty(ctx context.Context, id uuid.UUID, party *models.Party) error
	DeactivateParty(ctx context.Context, id uuid.UUID) error
	ListParties(ctx context.Context, limit, offset int) ([]*models.Party, error)
}

type partiesService struct {
	partyRepo repositories.PartyRepository
	audit     AuditLogsService
}

func NewPartiesService(partyRepo repositories.PartyRepository, audit AuditLogsService) PartiesService {
	return &partiesService{partyRepo: partyRepo, audit: audit}
}

func validatePartyType(partyType string) error {
	switch partyType {
	case models.PartyTypeSupplier, models.PartyTypeCustomer, models.PartyTypeBoth:
		return nil
	default:
		return common.Validationf("party type must be supplier, customer or both")
	}
}

func (s *partiesService) CreateParty(ctx context.Context, party *models.Party) (*models.Party, error) {
	if party.Name == "" {
		return nil, common.Validationf("party name is required")
	}
	if err := validatePartyType(party.PartyType); err != nil {
		return nil, err
	}

	party.ID = uuid.New()
	party.Active = true
	if err := s.partyRepo.Create(ctx, party); err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, "party", party.ID.String(), party.Name, models.ActionCreate, models.JSONB{"party_type": party.PartyType})
	return party, nil
}

func (s *partiesService) GetParty(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, common.NotFoundf("party %s not found", id)
	}
	return party, nil
}

func (s *partiesService) UpdateParty(ctx context.Context, id uuid.UUID, update *models.Party) error {
	if update.Name == "" {
		return common.Validationf("party name is required")
	}
	if err := validatePartyType(update.PartyType); err != nil {
		return err
	}

	existing, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return common.NotFoundf("party %s not found", id)
	}

	update.ID = id
	if err := s.partyRepo.Update(ctx, update); err != nil {
		return err
	}

	s.audit.Emit(ctx, "party", id.String(), update.Name, models.ActionUpdate, models.JSONB{
		"name":       models.JSONB{"from": existing.Name, "to": update.Name},
		"party_type": models.JSONB{"from": existing.PartyType, "to": update.PartyType},
	})
	return nil
}

// DeactivateParty soft-deletes. A party referenced by any open purchase order
// stays active until those orders reach closed or cancelled.
func (s *partiesService) DeactivateParty(ctx context.Context, id uuid.UUID) error {
	party, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if party == nil {
		return common.NotFoundf("party %s not found", id)
	}
	if !party.Active {
		return nil
	}

	open, err := s.partyRepo.HasOpenPurchaseOrders(ctx, id)
	if err != nil {
		return err
	}
	if open {
		return common.Conflictf("party %s has open purchase orders", party.Name)
	}

	if err := s.partyRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.audit.Emit(ctx, "party", id.String(), party.Name, models.ActionDelete, nil)
	return nil
}

func (s *partiesService) ListParties(ctx context.Context, limit, offset int) ([]*models.Party, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.partyRepo.List(ctx, limit, offset)
}
