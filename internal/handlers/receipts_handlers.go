package handlers

import (
	"net/http"
	"time"

	"godown/internal/common"
	"godown/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ReceiptsHandlers struct {
	receiptsService    services.ReceiptsService
	attachmentsService services.AttachmentsService
}

func NewReceiptsHandlers(receiptsService services.ReceiptsService, attachmentsService services.AttachmentsService) *ReceiptsHandlers {
	return &ReceiptsHandlers{
		receiptsService:    receiptsService,
		attachmentsService: attachmentsService,
	}
}

type CreateGRNRequest struct {
	PurchaseOrderID uuid.UUID        `json:"purchase_order_id"`
	Notes           *string          `json:"notes"`
	Lines           []GRNLineRequest `json:"lines"`
}

type GRNLineRequest struct {
	Sku             string  `json:"sku"`
	ReceivedQty     int     `json:"received_qty"`
	AcceptedQty     *int    `json:"accepted_qty"`
	RejectionReason *string `json:"rejection_reason"`
}

func (r *CreateGRNRequest) toInput() *services.CreateGRNInput {
	input := &services.CreateGRNInput{
		PurchaseOrderID: r.PurchaseOrderID,
		Notes:           r.Notes,
	}
	for _, line := range r.Lines {
		input.Lines = append(input.Lines, services.GRNLineInput{
			Sku:             line.Sku,
			ReceivedQty:     line.ReceivedQty,
			AcceptedQty:     line.AcceptedQty,
			RejectionReason: line.RejectionReason,
		})
	}
	return input
}

func (h *ReceiptsHandlers) CreateGRN(c echo.Context) error {
	var req CreateGRNRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.receiptsService.CreateGRN(c.Request().Context(), req.toInput())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"grn":      result.GRN,
		"warnings": result.Warnings,
	})
}

func (h *ReceiptsHandlers) GetGRN(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	grn, err := h.receiptsService.GetGRN(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, grn)
}

type ListGRNsRequest struct {
	Status          string `query:"status"`
	PurchaseOrderID string `query:"purchase_order_id"`
	Limit           int    `query:"limit"`
	Offset          int    `query:"offset"`
}

func (h *ReceiptsHandlers) ListGRNs(c echo.Context) error {
	var req ListGRNsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	ctx := c.Request().Context()
	if req.PurchaseOrderID != "" {
		poID, err := uuid.Parse(req.PurchaseOrderID)
		if err != nil {
			return common.SendError(c, common.Validationf("purchase_order_id is not a valid UUID"))
		}
		grns, err := h.receiptsService.ListGRNsByPurchaseOrder(ctx, poID)
		if err != nil {
			return common.SendError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"grns": grns})
	}

	var status *string
	if req.Status != "" {
		status = &req.Status
	}
	grns, err := h.receiptsService.ListGRNs(ctx, status, req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"grns": grns})
}

type UpdateGRNLinesRequest struct {
	Lines []GRNLineRequest `json:"lines"`
}

func (h *ReceiptsHandlers) UpdateGRNLines(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req UpdateGRNLinesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	var lines []services.GRNLineInput
	for _, line := range req.Lines {
		lines = append(lines, services.GRNLineInput{
			Sku:             line.Sku,
			AcceptedQty:     line.AcceptedQty,
			RejectionReason: line.RejectionReason,
		})
	}

	if err := h.receiptsService.UpdateGRNLines(c.Request().Context(), id, lines); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type PerformReceiptRequest struct {
	Placements []ShelfAssignmentRequest `json:"placements"`
}

type ShelfAssignmentRequest struct {
	Sku      string    `json:"sku"`
	ShelfID  uuid.UUID `json:"shelf_id"`
	Quantity int       `json:"quantity"`
}

func (h *ReceiptsHandlers) PerformReceipt(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req PerformReceiptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	var assignments []services.ShelfAssignment
	for _, p := range req.Placements {
		assignments = append(assignments, services.ShelfAssignment{
			Sku:      p.Sku,
			ShelfID:  p.ShelfID,
			Quantity: p.Quantity,
		})
	}

	grn, err := h.receiptsService.PerformReceipt(c.Request().Context(), id, assignments)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, grn)
}

func (h *ReceiptsHandlers) CancelGRN(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.receiptsService.CancelGRN(c.Request().Context(), id, req.Reason); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadAttachment stores a delivery-note document against the GRN.
func (h *ReceiptsHandlers) UploadAttachment(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if _, err := h.receiptsService.GetGRN(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "File is required")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to open uploaded file")
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName, err := h.attachmentsService.Upload(c.Request().Context(), id, file.Filename, contentType, src, file.Size)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"object_name": objectName})
}

func (h *ReceiptsHandlers) ListAttachments(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if _, err := h.receiptsService.GetGRN(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}

	attachments, err := h.attachmentsService.List(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}

	// Presign a download URL per object so the consumer never touches the
	// bucket directly.
	type attachmentResponse struct {
		ObjectName string `json:"object_name"`
		Size       int64  `json:"size"`
		URL        string `json:"url"`
	}
	response := make([]attachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		url, err := h.attachmentsService.GetPresignedURL(a.ObjectName, 15*time.Minute)
		if err != nil {
			return common.SendError(c, err)
		}
		response = append(response, attachmentResponse{ObjectName: a.ObjectName, Size: a.Size, URL: url})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"attachments": response})
}

func (h *ReceiptsHandlers) DeleteAttachment(c echo.Context) error {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if _, err := h.receiptsService.GetGRN(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}

	filename := c.Param("filename")
	if filename == "" {
		return common.SendError(c, common.Validationf("filename is required"))
	}

	// Objects are keyed <grnID>/<filename>, so the path params rebuild the
	// object name directly.
	if err := h.attachmentsService.Delete(c.Request().Context(), id.String()+"/"+filename); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
