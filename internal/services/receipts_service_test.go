package services

import (
	"context"
	"testing"

	"godown/internal/common"
	"godown/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type CreateGRNTestSuite struct {
	suite.Suite
	mockGRNRepo *MockGRNRepository
	mockPORepo  *MockPurchaseOrderRepository
	service     ReceiptsService
	poID        uuid.UUID
	warehouseID uuid.UUID
	ctx         context.Context
}

func (suite *CreateGRNTestSuite) SetupTest() {
	suite.mockGRNRepo = &MockGRNRepository{}
	suite.mockPORepo = &MockPurchaseOrderRepository{}
	suite.service = NewReceiptsService(nil, suite.mockGRNRepo, suite.mockPORepo, &MockPurchaseOrdersService{}, noopAudit{})
	suite.poID = uuid.New()
	suite.warehouseID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *CreateGRNTestSuite) TearDownTest() {
	suite.mockGRNRepo.AssertExpectations(suite.T())
	suite.mockPORepo.AssertExpectations(suite.T())
}

func TestCreateGRNTestSuite(t *testing.T) {
	suite.Run(t, new(CreateGRNTestSuite))
}

func (suite *CreateGRNTestSuite) confirmedPO() *models.PurchaseOrder {
	po := &models.PurchaseOrder{
		ID:          suite.poID,
		Number:      "PO-000007",
		WarehouseID: suite.warehouseID,
		Status:      models.POStatusConfirmed,
	}
	po.Items = []models.PurchaseOrderItem{
		{ID: uuid.New(), PurchaseOrderID: suite.poID, Sku: "SKU-1", ProductName: "Widget", ExpectedQty: 10, UnitCost: decimal.NewFromInt(25)},
		{ID: uuid.New(), PurchaseOrderID: suite.poID, Sku: "SKU-2", ProductName: "Gadget", ExpectedQty: 4, UnitCost: decimal.NewFromInt(12)},
	}
	return po
}

func (suite *CreateGRNTestSuite) TestCreate_DefaultsAcceptedToReceived() {
	suite.mockPORepo.On("GetByID", suite.ctx, suite.poID).Return(suite.confirmedPO(), nil)
	suite.mockGRNRepo.On("NextNumber", suite.ctx).Return("GRN-000003", nil)
	suite.mockGRNRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.GRN")).Return(nil)

	result, err := suite.service.CreateGRN(suite.ctx, &CreateGRNInput{
		PurchaseOrderID: suite.poID,
		Lines:           []GRNLineInput{{Sku: "SKU-1", ReceivedQty: 6}},
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "GRN-000003", result.GRN.Number)
	assert.Equal(suite.T(), suite.warehouseID, result.GRN.WarehouseID)
	assert.Equal(suite.T(), models.GRNStatusDraft, result.GRN.Status)
	assert.Equal(suite.T(), 6, result.GRN.Items[0].AcceptedQty)
	assert.Equal(suite.T(), 0, result.GRN.Items[0].RejectedQty)
	assert.Empty(suite.T(), result.Warnings)
}

func (suite *CreateGRNTestSuite) TestCreate_SplitWithRejection() {
	suite.mockPORepo.On("GetByID", suite.ctx, suite.poID).Return(suite.confirmedPO(), nil)
	suite.mockGRNRepo.On("NextNumber", suite.ctx).Return("GRN-000004", nil)
	suite.mockGRNRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.GRN")).Return(nil)

	result, err := suite.service.CreateGRN(suite.ctx, &CreateGRNInput{
		PurchaseOrderID: suite.poID,
		Lines: []GRNLineInput{
			{Sku: "SKU-1", ReceivedQty: 6, AcceptedQty: intPtr(5), RejectionReason: strPtr("crushed carton")},
		},
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5, result.GRN.Items[0].AcceptedQty)
	assert.Equal(suite.T(), 1, result.GRN.Items[0].RejectedQty)
}

func (suite *CreateGRNTestSuite) TestCreate_RejectionNeedsReason() {
	suite.mockPORepo.On("GetByID", suite.ctx, suite.poID).Return(suite.confirmedPO(), nil)
	suite.mockGRNRepo.On("NextNumber", suite.ctx).Return("GRN-000005", nil)

	_, err := suite.service.CreateGRN(suite.ctx, &CreateGRNInput{
		PurchaseOrderID: suite.poID,
		Lines:           []GRNLineInput{{Sku: "SKU-1", ReceivedQty: 6, AcceptedQty: intPtr(5)}},
	})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *CreateGRNTestSuite) TestCreate_DraftPORefused() {
	po := suite.confirmedPO()
	po.Status = models.POStatusDraft
	suite.mockPORepo.On("GetByID", suite.ctx, suite.poID).Return(po, nil)

	_, err := suite.service.CreateGRN(suite.ctx, &CreateGRNInput{
		PurchaseOrderID: suite.poID,
		Lines:           []GRNLineInput{{Sku: "SKU-1", ReceivedQty: 6}},
	})
	assert.Equal(suite.T(), common.KindStateConflict, common.KindOf(err))
}

func (suite *CreateGRNTestSuite) TestCreate_UnknownSku() {
	suite.mockPORepo.On("GetByID", suite.ctx, suite.poID).Return(suite.confirmedPO(), nil)
	suite.mockGRNRepo.On("NextNumber", suite.ctx).Return("GRN-000006", nil)

	_, err := suite.service.CreateGRN(suite.ctx, &CreateGRNInput{
		PurchaseOrderID: suite.poID,
		Lines:           []GRNLineInput{{Sku: "SKU-9", ReceivedQty: 1}},
	})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *CreateGRNTestSuite) TestCreate_OverReceiptWarns() {
	suite.mockPORepo.On("GetByID", suite.ctx, suite.poID).Return(suite.confirmedPO(), nil)
	suite.mockGRNRepo.On("NextNumber", suite.ctx).Return("GRN-000007", nil)
	suite.mockGRNRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.GRN")).Return(nil)

	result, err := suite.service.CreateGRN(suite.ctx, &CreateGRNInput{
		PurchaseOrderID: suite.poID,
		Lines:           []GRNLineInput{{Sku: "SKU-2", ReceivedQty: 7}},
	})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result.Warnings, 1)
	assert.Contains(suite.T(), result.Warnings[0], "SKU-2")
}

func (suite *CreateGRNTestSuite) TestUpdateLines_CompletedRefused() {
	grnID := uuid.New()
	grn := &models.GRN{ID: grnID, Number: "GRN-000001", Status: models.GRNStatusCompleted}
	suite.mockGRNRepo.On("GetByID", suite.ctx, grnID).Return(grn, nil)

	err := suite.service.UpdateGRNLines(suite.ctx, grnID, []GRNLineInput{{Sku: "SKU-1", AcceptedQty: intPtr(3)}})
	assert.Equal(suite.T(), common.KindStateConflict, common.KindOf(err))
}

func (suite *CreateGRNTestSuite) TestUpdateLines_Resplit() {
	grnID := uuid.New()
	grn := &models.GRN{
		ID: grnID, Number: "GRN-000001", Status: models.GRNStatusDraft,
		Items: []models.GRNItem{{GRNID: grnID, Sku: "SKU-1", ReceivedQty: 6, AcceptedQty: 6}},
	}
	reason := strPtr("water damage")
	suite.mockGRNRepo.On("GetByID", suite.ctx, grnID).Return(grn, nil)
	suite.mockGRNRepo.On("UpdateItemSplits", suite.ctx, grnID, []models.GRNItemSplit{
		{Sku: "SKU-1", AcceptedQty: 4, RejectedQty: 2, RejectionReason: reason},
	}).Return(true, nil)

	err := suite.service.UpdateGRNLines(suite.ctx, grnID, []GRNLineInput{
		{Sku: "SKU-1", AcceptedQty: intPtr(4), RejectionReason: reason},
	})
	assert.NoError(suite.T(), err)
}

func (suite *CreateGRNTestSuite) TestUpdateLines_InvalidLineWritesNothing() {
	grnID := uuid.New()
	grn := &models.GRN{
		ID: grnID, Number: "GRN-000001", Status: models.GRNStatusDraft,
		Items: []models.GRNItem{
			{GRNID: grnID, Sku: "SKU-1", ReceivedQty: 6, AcceptedQty: 6},
			{GRNID: grnID, Sku: "SKU-2", ReceivedQty: 4, AcceptedQty: 4},
		},
	}
	suite.mockGRNRepo.On("GetByID", suite.ctx, grnID).Return(grn, nil)

	// The second line over-accepts, so the valid first line must not land.
	err := suite.service.UpdateGRNLines(suite.ctx, grnID, []GRNLineInput{
		{Sku: "SKU-1", AcceptedQty: intPtr(4), RejectionReason: strPtr("water damage")},
		{Sku: "SKU-2", AcceptedQty: intPtr(9)},
	})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
	suite.mockGRNRepo.AssertNotCalled(suite.T(), "UpdateItemSplits", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CreateGRNTestSuite) TestCancel_NoReasonAllowed() {
	grnID := uuid.New()
	grn := &models.GRN{ID: grnID, Number: "GRN-000002", Status: models.GRNStatusDraft}
	suite.mockGRNRepo.On("GetByID", suite.ctx, grnID).Return(grn, nil)
	suite.mockGRNRepo.On("CancelDraft", suite.ctx, grnID, (*string)(nil)).Return(true, nil)

	assert.NoError(suite.T(), suite.service.CancelGRN(suite.ctx, grnID, ""))
}

func (suite *CreateGRNTestSuite) TestCancel_CompletedRefused() {
	grnID := uuid.New()
	grn := &models.GRN{ID: grnID, Number: "GRN-000001", Status: models.GRNStatusCompleted}
	suite.mockGRNRepo.On("GetByID", suite.ctx, grnID).Return(grn, nil)
	suite.mockGRNRepo.On("CancelDraft", suite.ctx, grnID, mock.AnythingOfType("*string")).Return(false, nil)

	err := suite.service.CancelGRN(suite.ctx, grnID, "duplicate entry")
	assert.Equal(suite.T(), common.KindStateConflict, common.KindOf(err))
}

// PerformReceipt runs against a mocked pgx pool so the whole transaction is
// asserted statement by statement.
type PerformReceiptTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	mockPOSvc *MockPurchaseOrdersService
	service   ReceiptsService
	grnID     uuid.UUID
	poID      uuid.UUID
	ctx       context.Context
}

func (suite *PerformReceiptTestSuite) SetupTest() {
	mockPool, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mockPool
	suite.mockPOSvc = &MockPurchaseOrdersService{}
	suite.service = NewReceiptsService(mockPool, &MockGRNRepository{}, &MockPurchaseOrderRepository{}, suite.mockPOSvc, noopAudit{})
	suite.grnID = uuid.New()
	suite.poID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *PerformReceiptTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mockPOSvc.AssertExpectations(suite.T())
	suite.mock.Close()
}

func TestPerformReceiptTestSuite(t *testing.T) {
	suite.Run(t, new(PerformReceiptTestSuite))
}

func (suite *PerformReceiptTestSuite) expectLockedDraft(warehouseID uuid.UUID) {
	suite.mock.ExpectQuery(`SELECT id, number, purchase_order_id, po_number, warehouse_id, status, notes`).
		WithArgs(suite.grnID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "number", "purchase_order_id", "po_number", "warehouse_id", "status", "notes"}).
			AddRow(suite.grnID, "GRN-000010", suite.poID, "PO-000007", warehouseID, models.GRNStatusDraft, (*string)(nil)))
}

func (suite *PerformReceiptTestSuite) expectItems(itemID uuid.UUID) {
	suite.mock.ExpectQuery(`SELECT id, grn_id, sku, product_name, received_qty, accepted_qty, rejected_qty`).
		WithArgs(suite.grnID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "grn_id", "sku", "product_name", "received_qty", "accepted_qty", "rejected_qty", "rejection_reason", "unit_cost"}).
			AddRow(itemID, suite.grnID, "SKU-1", "Widget", 6, 5, 1, strPtr("crushed carton"), decimal.NewFromInt(25)))
}

func (suite *PerformReceiptTestSuite) TestSuccess_SplitReceipt() {
	warehouseID := uuid.New()
	itemID := uuid.New()
	shelfID := uuid.New()
	rackID := uuid.New()
	zoneID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectLockedDraft(warehouseID)
	suite.expectItems(itemID)

	suite.mock.ExpectQuery(`SELECT id, rack_id, zone_id, warehouse_id, code`).
		WithArgs(shelfID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "rack_id", "zone_id", "warehouse_id", "code"}).
			AddRow(shelfID, rackID, zoneID, warehouseID, "S-01"))

	suite.mock.ExpectExec(`INSERT INTO grn_item_placements`).
		WithArgs(pgxmock.AnyArg(), itemID, shelfID, 5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO placements`).
		WithArgs(pgxmock.AnyArg(), shelfID, "SKU-1", "Widget", 5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// One stock unit per accepted quantity, rejected units never minted.
	for i := 0; i < 5; i++ {
		suite.mock.ExpectExec(`INSERT INTO stock_units`).
			WithArgs(pgxmock.AnyArg(), "SKU-1", "Widget", suite.grnID, models.PutawayInbound, warehouseID, zoneID, rackID, shelfID).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	suite.mockPOSvc.On("ApplyReceiptTx", suite.ctx, mock.Anything, suite.poID, map[string]int{"SKU-1": 5}).
		Return(models.POStatusPartiallyReceived, nil)

	suite.mock.ExpectExec(`UPDATE grns`).
		WithArgs(models.GRNStatusCompleted, pgxmock.AnyArg(), suite.grnID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	grn, err := suite.service.PerformReceipt(suite.ctx, suite.grnID, []ShelfAssignment{
		{Sku: "SKU-1", ShelfID: shelfID, Quantity: 5},
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.GRNStatusCompleted, grn.Status)
}

func (suite *PerformReceiptTestSuite) TestSecondCompletionRefused() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT id, number, purchase_order_id, po_number, warehouse_id, status, notes`).
		WithArgs(suite.grnID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "number", "purchase_order_id", "po_number", "warehouse_id", "status", "notes"}).
			AddRow(suite.grnID, "GRN-000010", suite.poID, "PO-000007", uuid.New(), models.GRNStatusCompleted, (*string)(nil)))
	suite.mock.ExpectRollback()

	_, err := suite.service.PerformReceipt(suite.ctx, suite.grnID, nil)
	assert.Equal(suite.T(), common.KindStateConflict, common.KindOf(err))
}

func (suite *PerformReceiptTestSuite) TestAssignmentShortfallRollsBack() {
	warehouseID := uuid.New()
	itemID := uuid.New()
	suite.mock.ExpectBegin()
	suite.expectLockedDraft(warehouseID)
	suite.expectItems(itemID)
	suite.mock.ExpectRollback()

	// 3 of the 5 accepted units assigned.
	_, err := suite.service.PerformReceipt(suite.ctx, suite.grnID, []ShelfAssignment{
		{Sku: "SKU-1", ShelfID: uuid.New(), Quantity: 3},
	})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *PerformReceiptTestSuite) TestMissingShelfRollsBack() {
	warehouseID := uuid.New()
	itemID := uuid.New()
	shelfID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectLockedDraft(warehouseID)
	suite.expectItems(itemID)
	suite.mock.ExpectQuery(`SELECT id, rack_id, zone_id, warehouse_id, code`).
		WithArgs(shelfID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	_, err := suite.service.PerformReceipt(suite.ctx, suite.grnID, []ShelfAssignment{
		{Sku: "SKU-1", ShelfID: shelfID, Quantity: 5},
	})
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
}

func (suite *PerformReceiptTestSuite) TestForeignWarehouseShelfRefused() {
	warehouseID := uuid.New()
	itemID := uuid.New()
	shelfID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectLockedDraft(warehouseID)
	suite.expectItems(itemID)
	suite.mock.ExpectQuery(`SELECT id, rack_id, zone_id, warehouse_id, code`).
		WithArgs(shelfID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "rack_id", "zone_id", "warehouse_id", "code"}).
			AddRow(shelfID, uuid.New(), uuid.New(), uuid.New(), "S-99"))
	suite.mock.ExpectRollback()

	_, err := suite.service.PerformReceipt(suite.ctx, suite.grnID, []ShelfAssignment{
		{Sku: "SKU-1", ShelfID: shelfID, Quantity: 5},
	})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func TestMapTxError(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, common.KindTransactionAbort, common.KindOf(mapTxError(serialization)))

	deadlock := &pgconn.PgError{Code: "40P01"}
	assert.Equal(t, common.KindTransactionAbort, common.KindOf(mapTxError(deadlock)))

	other := &pgconn.PgError{Code: "23505"}
	assert.NotEqual(t, common.KindTransactionAbort, common.KindOf(mapTxError(other)))
}
