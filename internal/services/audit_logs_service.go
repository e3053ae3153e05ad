package services

import (
	"context"
	"log"

	"godown/internal/common"
	"godown/internal/models"
	"godown/internal/repositories"

	"github.com/google/uuid"
)

type AuditLogsService interface {
	// Emit records one event for a state-changing operation. Delivery is
	// fire-and-forget: failures are logged and never fail the mutation.
	Emit(ctx context.Context, entityType, entityID, entityName, action string, changes models.JSONB)

	ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	GetEntityHistory(ctx context.Context, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditLogsRepo: auditLogsRepo}
}

func (s *auditLogsService) Emit(ctx context.Context, entityType, entityID, entityName, action string, changes models.JSONB) {
	var actor *uuid.UUID
	if id, ok := common.ActorIDFromContext(ctx); ok {
		actor = &id
	}

	entry := &models.AuditLog{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Action:     action,
		Changes:    changes,
		ActorID:    actor,
	}

	if err := s.auditLogsRepo.Create(ctx, entry); err != nil {
		log.Printf("WARN: audit event dropped for %s %s (%s): %v", entityType, entityID, action, err)
	}
}

func (s *auditLogsService) ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	filters.Limit, filters.Offset = common.ValidatePaginationParams(filters.Limit, filters.Offset)
	return s.auditLogsRepo.List(ctx, filters)
}

func (s *auditLogsService) GetEntityHistory(ctx context.Context, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.auditLogsRepo.GetByEntity(ctx, entityType, entityID, limit, offset)
}
