package handlers

import (
	"net/http"

	"godown/internal/common"
	"godown/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LocationsHandlers exposes the warehouse hierarchy over HTTP.
type LocationsHandlers struct {
	locationsService services.LocationsService
}

func NewLocationsHandlers(locationsService services.LocationsService) *LocationsHandlers {
	return &LocationsHandlers{locationsService: locationsService}
}

type ListRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

type CreateWarehouseRequest struct {
	Name    string  `json:"name"`
	Code    string  `json:"code"`
	Address *string `json:"address"`
}

func (h *LocationsHandlers) CreateWarehouse(c echo.Context) error {
	var req CreateWarehouseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	warehouse, err := h.locationsService.CreateWarehouse(c.Request().Context(), req.Name, req.Code, req.Address)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, warehouse)
}

func (h *LocationsHandlers) ListWarehouses(c echo.Context) error {
	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	warehouses, err := h.locationsService.ListWarehouses(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"warehouses": warehouses})
}

func (h *LocationsHandlers) GetWarehouse(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	warehouse, stats, err := h.locationsService.GetWarehouse(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"warehouse": warehouse,
		"stats":     stats,
	})
}

type RenameRequest struct {
	Name string `json:"name"`
}

func (h *LocationsHandlers) RenameWarehouse(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req RenameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.locationsService.RenameWarehouse(c.Request().Context(), id, req.Name); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LocationsHandlers) DeleteWarehouse(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.locationsService.DeleteWarehouse(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type CreateZoneRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (h *LocationsHandlers) CreateZone(c echo.Context) error {
	warehouseID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req CreateZoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	zone, err := h.locationsService.CreateZone(c.Request().Context(), warehouseID, req.Name, req.Code)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, zone)
}

func (h *LocationsHandlers) ListZones(c echo.Context) error {
	warehouseID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	zones, err := h.locationsService.ListZones(c.Request().Context(), warehouseID, req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"zones": zones})
}

func (h *LocationsHandlers) RenameZone(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req RenameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.locationsService.RenameZone(c.Request().Context(), id, req.Name); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type MoveZoneRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
}

func (h *LocationsHandlers) MoveZone(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req MoveZoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.locationsService.MoveZone(c.Request().Context(), id, req.WarehouseID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LocationsHandlers) DeleteZone(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.locationsService.DeleteZone(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type CreateRackRequest struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Position *int   `json:"position"`
}

func (h *LocationsHandlers) CreateRack(c echo.Context) error {
	zoneID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req CreateRackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	rack, err := h.locationsService.CreateRack(c.Request().Context(), zoneID, req.Name, req.Code, req.Position)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, rack)
}

func (h *LocationsHandlers) ListRacks(c echo.Context) error {
	zoneID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	racks, err := h.locationsService.ListRacks(c.Request().Context(), zoneID, req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"racks": racks})
}

func (h *LocationsHandlers) RenameRack(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req RenameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.locationsService.RenameRack(c.Request().Context(), id, req.Name); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type MoveRackRequest struct {
	ZoneID   uuid.UUID `json:"zone_id"`
	Position *int      `json:"position"`
}

func (h *LocationsHandlers) MoveRack(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req MoveRackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.locationsService.MoveRack(c.Request().Context(), id, req.ZoneID, req.Position); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LocationsHandlers) DeleteRack(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.locationsService.DeleteRack(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type CreateShelfRequest struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Position *int   `json:"position"`
	Capacity *int   `json:"capacity"`
}

func (h *LocationsHandlers) CreateShelf(c echo.Context) error {
	rackID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req CreateShelfRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	shelf, err := h.locationsService.CreateShelf(c.Request().Context(), rackID, req.Name, req.Code, req.Position, req.Capacity)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, shelf)
}

func (h *LocationsHandlers) ListShelves(c echo.Context) error {
	rackID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	shelves, err := h.locationsService.ListShelves(c.Request().Context(), rackID, req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"shelves": shelves})
}

func (h *LocationsHandlers) RenameShelf(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req RenameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.locationsService.RenameShelf(c.Request().Context(), id, req.Name); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type MoveShelfRequest struct {
	RackID   uuid.UUID `json:"rack_id"`
	Position *int      `json:"position"`
}

func (h *LocationsHandlers) MoveShelf(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req MoveShelfRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.locationsService.MoveShelf(c.Request().Context(), id, req.RackID, req.Position); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LocationsHandlers) DeleteShelf(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.locationsService.DeleteShelf(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LocationsHandlers) ListShelfPlacements(c echo.Context) error {
	shelfID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	placements, err := h.locationsService.ListShelfPlacements(c.Request().Context(), shelfID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"placements": placements})
}

// ResolveShelf answers whether the fully-specified path addresses a real
// shelf, for callers validating a location before routing goods to it.
func (h *LocationsHandlers) ResolveShelf(c echo.Context) error {
	warehouseID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	zoneID, err := common.ParseUUIDParam(c, "zone_id")
	if err != nil {
		return common.SendError(c, err)
	}
	rackID, err := common.ParseUUIDParam(c, "rack_id")
	if err != nil {
		return common.SendError(c, err)
	}
	shelfID, err := common.ParseUUIDParam(c, "shelf_id")
	if err != nil {
		return common.SendError(c, err)
	}

	shelf, err := h.locationsService.ResolveShelf(c.Request().Context(), warehouseID, zoneID, rackID, shelfID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, shelf)
}
