package handlers

import (
	"net/http"

	"godown/internal/common"
	"godown/internal/services"

	"github.com/labstack/echo/v4"
)

type ReturnsHandlers struct {
	returnsService services.ReturnsService
}

func NewReturnsHandlers(returnsService services.ReturnsService) *ReturnsHandlers {
	return &ReturnsHandlers{returnsService: returnsService}
}

func (h *ReturnsHandlers) ClassifyInbound(c echo.Context) error {
	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	classified, err := h.returnsService.ClassifyInbound(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"units": classified})
}

func (h *ReturnsHandlers) ClassifyUnit(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	classified, err := h.returnsService.ClassifyUnit(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, classified)
}

type ReturnIntakeRequest struct {
	Sku         string `json:"sku"`
	ProductName string `json:"product_name"`
	StoreID     string `json:"store_id"`
	OrderID     string `json:"order_id"`
}

func (h *ReturnsHandlers) IntakeReturn(c echo.Context) error {
	var req ReturnIntakeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	unit, err := h.returnsService.IntakeReturn(c.Request().Context(), &services.ReturnIntakeInput{
		Sku:         req.Sku,
		ProductName: req.ProductName,
		StoreID:     req.StoreID,
		OrderID:     req.OrderID,
	})
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, unit)
}
