package handlers

import (
	"net/http"
	"time"

	"godown/internal/common"
	"godown/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PurchaseOrderHandlers struct {
	poService services.PurchaseOrdersService
}

func NewPurchaseOrderHandlers(poService services.PurchaseOrdersService) *PurchaseOrderHandlers {
	return &PurchaseOrderHandlers{poService: poService}
}

type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID                  `json:"supplier_id"`
	WarehouseID  uuid.UUID                  `json:"warehouse_id"`
	Currency     string                     `json:"currency"`
	ExpectedDate *string                    `json:"expected_date"`
	Lines        []PurchaseOrderLineRequest `json:"lines"`
}

type PurchaseOrderLineRequest struct {
	Sku         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	ExpectedQty int             `json:"expected_qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

func (h *PurchaseOrderHandlers) CreatePurchaseOrder(c echo.Context) error {
	var req CreatePurchaseOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	input := &services.CreatePurchaseOrderInput{
		SupplierID:  req.SupplierID,
		WarehouseID: req.WarehouseID,
		Currency:    req.Currency,
	}
	if req.ExpectedDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.ExpectedDate)
		if err != nil {
			return common.SendError(c, common.Validationf("expected_date must be YYYY-MM-DD"))
		}
		input.ExpectedDate = &parsed
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, services.PurchaseOrderLineInput{
			Sku:         line.Sku,
			ProductName: line.ProductName,
			ExpectedQty: line.ExpectedQty,
			UnitCost:    line.UnitCost,
		})
	}

	po, err := h.poService.CreatePurchaseOrder(c.Request().Context(), input)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, po)
}

func (h *PurchaseOrderHandlers) GetPurchaseOrder(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	po, err := h.poService.GetPurchaseOrder(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, po)
}

type ListPurchaseOrdersRequest struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

func (h *PurchaseOrderHandlers) ListPurchaseOrders(c echo.Context) error {
	var req ListPurchaseOrdersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	var status *string
	if req.Status != "" {
		status = &req.Status
	}

	orders, err := h.poService.ListPurchaseOrders(c.Request().Context(), status, req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"purchase_orders": orders})
}

func (h *PurchaseOrderHandlers) ConfirmPurchaseOrder(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.poService.ConfirmPurchaseOrder(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (h *PurchaseOrderHandlers) CancelPurchaseOrder(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.poService.CancelPurchaseOrder(c.Request().Context(), id, req.Reason); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PurchaseOrderHandlers) ClosePurchaseOrder(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.poService.ClosePurchaseOrder(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
