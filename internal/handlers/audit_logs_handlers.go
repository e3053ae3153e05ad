package handlers

import (
	"net/http"

	"godown/internal/common"
	"godown/internal/models"
	"godown/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuditLogsHandlers struct {
	auditService services.AuditLogsService
}

func NewAuditLogsHandlers(auditService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditService: auditService}
}

type ListAuditLogsRequest struct {
	EntityType string `query:"entity_type"`
	EntityID   string `query:"entity_id"`
	Action     string `query:"action"`
	ActorID    string `query:"actor_id"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	var req ListAuditLogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	filters := &models.AuditLogFilters{Limit: req.Limit, Offset: req.Offset}
	if req.EntityType != "" {
		filters.EntityType = &req.EntityType
	}
	if req.EntityID != "" {
		filters.EntityID = &req.EntityID
	}
	if req.Action != "" {
		filters.Action = &req.Action
	}
	if req.ActorID != "" {
		actorID, err := uuid.Parse(req.ActorID)
		if err != nil {
			return common.SendError(c, common.Validationf("actor_id is not a valid UUID"))
		}
		filters.ActorID = &actorID
	}

	entries, err := h.auditService.ListAuditLogs(c.Request().Context(), filters)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"audit_logs": entries})
}

func (h *AuditLogsHandlers) GetEntityHistory(c echo.Context) error {
	entityType := c.Param("entity_type")
	entityID := c.Param("entity_id")
	if entityType == "" || entityID == "" {
		return common.SendError(c, common.Validationf("entity_type and entity_id are required"))
	}

	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	entries, err := h.auditService.GetEntityHistory(c.Request().Context(), entityType, entityID, req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"audit_logs": entries})
}
