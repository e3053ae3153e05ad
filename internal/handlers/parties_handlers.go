package handlers

import (
	"net/http"

	"godown/internal/common"
	"godown/internal/models"
	"godown/internal/services"

	"github.com/labstack/echo/v4"
)

type PartiesHandlers struct {
	partiesService services.PartiesService
}

func NewPartiesHandlers(partiesService services.PartiesService) *PartiesHandlers {
	return &PartiesHandlers{partiesService: partiesService}
}

type PartyRequest struct {
	Name         string  `json:"name"`
	PartyType    string  `json:"party_type"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	Address      *string `json:"address"`
}

func (r *PartyRequest) toModel() *models.Party {
	return &models.Party{
		Name:         r.Name,
		PartyType:    r.PartyType,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Address:      r.Address,
	}
}

func (h *PartiesHandlers) CreateParty(c echo.Context) error {
	var req PartyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	party, err := h.partiesService.CreateParty(c.Request().Context(), req.toModel())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, party)
}

func (h *PartiesHandlers) GetParty(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	party, err := h.partiesService.GetParty(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, party)
}

func (h *PartiesHandlers) UpdateParty(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req PartyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.partiesService.UpdateParty(c.Request().Context(), id, req.toModel()); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PartiesHandlers) DeactivateParty(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.partiesService.DeactivateParty(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PartiesHandlers) ListParties(c echo.Context) error {
	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	parties, err := h.partiesService.ListParties(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"parties": parties})
}
