package services

import (
	"context"
	"testing"

	"godown/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"godown/internal/common"
)

type PurchaseOrdersServiceTestSuite struct {
	suite.Suite
	mockPORepo        *MockPurchaseOrderRepository
	mockPartyRepo     *MockPartyRepository
	mockWarehouseRepo *MockWarehouseRepository
	service           PurchaseOrdersService
	supplierID        uuid.UUID
	warehouseID       uuid.UUID
	ctx               context.Context
}

func (suite *PurchaseOrdersServiceTestSuite) SetupTest() {
	suite.mockPORepo = &MockPurchaseOrderRepository{}
	suite.mockPartyRepo = &MockPartyRepository{}
	suite.mockWarehouseRepo = &MockWarehouseRepository{}
	suite.service = NewPurchaseOrdersService(suite.mockPORepo, suite.mockPartyRepo, suite.mockWarehouseRepo, noopAudit{})
	suite.supplierID = uuid.New()
	suite.warehouseID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *PurchaseOrdersServiceTestSuite) TearDownTest() {
	suite.mockPORepo.AssertExpectations(suite.T())
	suite.mockPartyRepo.AssertExpectations(suite.T())
	suite.mockWarehouseRepo.AssertExpectations(suite.T())
}

func TestPurchaseOrdersServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseOrdersServiceTestSuite))
}

func (suite *PurchaseOrdersServiceTestSuite) validInput() *CreatePurchaseOrderInput {
	return &CreatePurchaseOrderInput{
		SupplierID:  suite.supplierID,
		WarehouseID: suite.warehouseID,
		Currency:    "INR",
		Lines: []PurchaseOrderLineInput{
			{Sku: "SKU-1", ProductName: "Widget", ExpectedQty: 10, UnitCost: decimal.NewFromInt(25)},
			{Sku: "SKU-2", ProductName: "Gadget", ExpectedQty: 4, UnitCost: decimal.RequireFromString("12.50")},
		},
	}
}

func (suite *PurchaseOrdersServiceTestSuite) activeSupplier() *models.Party {
	return &models.Party{ID: suite.supplierID, Name: "Acme", PartyType: models.PartyTypeSupplier, Active: true}
}

func (suite *PurchaseOrdersServiceTestSuite) TestCreate_Success() {
	suite.mockPartyRepo.On("GetByID", suite.ctx, suite.supplierID).Return(suite.activeSupplier(), nil)
	suite.mockWarehouseRepo.On("GetByID", suite.ctx, suite.warehouseID).Return(&models.Warehouse{ID: suite.warehouseID, Code: "WH1"}, nil)
	suite.mockPORepo.On("NextNumber", suite.ctx).Return("PO-000042", nil)
	suite.mockPORepo.On("Create", suite.ctx, mock.AnythingOfType("*models.PurchaseOrder")).Return(nil)

	po, err := suite.service.CreatePurchaseOrder(suite.ctx, suite.validInput())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "PO-000042", po.Number)
	assert.Equal(suite.T(), models.POStatusDraft, po.Status)
	assert.Len(suite.T(), po.Items, 2)
	// 10*25 + 4*12.50
	assert.True(suite.T(), po.TotalAmount.Equal(decimal.RequireFromString("300")))
}

func (suite *PurchaseOrdersServiceTestSuite) TestCreate_NoLines() {
	input := suite.validInput()
	input.Lines = nil

	_, err := suite.service.CreatePurchaseOrder(suite.ctx, input)
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestCreate_DuplicateSku() {
	input := suite.validInput()
	input.Lines[1].Sku = "SKU-1"

	_, err := suite.service.CreatePurchaseOrder(suite.ctx, input)
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestCreate_NonPositiveQty() {
	input := suite.validInput()
	input.Lines[0].ExpectedQty = 0

	_, err := suite.service.CreatePurchaseOrder(suite.ctx, input)
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestCreate_NegativeCost() {
	input := suite.validInput()
	input.Lines[0].UnitCost = decimal.NewFromInt(-1)

	_, err := suite.service.CreatePurchaseOrder(suite.ctx, input)
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestCreate_InactiveSupplier() {
	supplier := suite.activeSupplier()
	supplier.Active = false
	suite.mockPartyRepo.On("GetByID", suite.ctx, suite.supplierID).Return(supplier, nil)

	_, err := suite.service.CreatePurchaseOrder(suite.ctx, suite.validInput())
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestCreate_CustomerOnlyParty() {
	supplier := suite.activeSupplier()
	supplier.PartyType = models.PartyTypeCustomer
	suite.mockPartyRepo.On("GetByID", suite.ctx, suite.supplierID).Return(supplier, nil)

	_, err := suite.service.CreatePurchaseOrder(suite.ctx, suite.validInput())
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestConfirm_Success() {
	poID := uuid.New()
	po := &models.PurchaseOrder{ID: poID, Number: "PO-000001", Status: models.POStatusDraft}
	suite.mockPORepo.On("GetByID", suite.ctx, poID).Return(po, nil)
	suite.mockPORepo.On("TransitionStatus", suite.ctx, poID, models.POStatusDraft, models.POStatusConfirmed, (*string)(nil)).Return(true, nil)

	err := suite.service.ConfirmPurchaseOrder(suite.ctx, poID)
	assert.NoError(suite.T(), err)
}

func (suite *PurchaseOrdersServiceTestSuite) TestConfirm_AlreadyConfirmed() {
	poID := uuid.New()
	po := &models.PurchaseOrder{ID: poID, Number: "PO-000001", Status: models.POStatusConfirmed}
	suite.mockPORepo.On("GetByID", suite.ctx, poID).Return(po, nil)
	suite.mockPORepo.On("TransitionStatus", suite.ctx, poID, models.POStatusDraft, models.POStatusConfirmed, (*string)(nil)).Return(false, nil)

	err := suite.service.ConfirmPurchaseOrder(suite.ctx, poID)
	assert.Equal(suite.T(), common.KindStateConflict, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestCancel_RequiresReason() {
	err := suite.service.CancelPurchaseOrder(suite.ctx, uuid.New(), "")
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestCancel_AfterReceiptRefused() {
	poID := uuid.New()
	po := &models.PurchaseOrder{ID: poID, Number: "PO-000001", Status: models.POStatusPartiallyReceived}
	suite.mockPORepo.On("GetByID", suite.ctx, poID).Return(po, nil)

	err := suite.service.CancelPurchaseOrder(suite.ctx, poID, "supplier folded")
	assert.Equal(suite.T(), common.KindStateConflict, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestClose_OnlyFullyReceived() {
	poID := uuid.New()
	po := &models.PurchaseOrder{ID: poID, Number: "PO-000001", Status: models.POStatusConfirmed}
	suite.mockPORepo.On("GetByID", suite.ctx, poID).Return(po, nil)
	suite.mockPORepo.On("TransitionStatus", suite.ctx, poID, models.POStatusFullyReceived, models.POStatusClosed, (*string)(nil)).Return(false, nil)

	err := suite.service.ClosePurchaseOrder(suite.ctx, poID)
	assert.Equal(suite.T(), common.KindStateConflict, common.KindOf(err))
}

func (suite *PurchaseOrdersServiceTestSuite) TestGet_NotFound() {
	poID := uuid.New()
	suite.mockPORepo.On("GetByID", suite.ctx, poID).Return(nil, nil)

	_, err := suite.service.GetPurchaseOrder(suite.ctx, poID)
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		items    []models.PurchaseOrderItem
		expected string
	}{
		{
			name:   "nothing received stays confirmed",
			status: models.POStatusConfirmed,
			items: []models.PurchaseOrderItem{
				{ExpectedQty: 10, ReceivedQty: 0},
			},
			expected: models.POStatusConfirmed,
		},
		{
			name:   "partial line",
			status: models.POStatusConfirmed,
			items: []models.PurchaseOrderItem{
				{ExpectedQty: 10, ReceivedQty: 5},
				{ExpectedQty: 3, ReceivedQty: 0},
			},
			expected: models.POStatusPartiallyReceived,
		},
		{
			name:   "all lines complete",
			status: models.POStatusPartiallyReceived,
			items: []models.PurchaseOrderItem{
				{ExpectedQty: 10, ReceivedQty: 10},
				{ExpectedQty: 3, ReceivedQty: 3},
			},
			expected: models.POStatusFullyReceived,
		},
		{
			name:   "over-receipt counts as complete",
			status: models.POStatusPartiallyReceived,
			items: []models.PurchaseOrderItem{
				{ExpectedQty: 10, ReceivedQty: 12},
			},
			expected: models.POStatusFullyReceived,
		},
		{
			name:     "cancelled passes through",
			status:   models.POStatusCancelled,
			items:    []models.PurchaseOrderItem{{ExpectedQty: 10, ReceivedQty: 10}},
			expected: models.POStatusCancelled,
		},
		{
			name:     "closed passes through",
			status:   models.POStatusClosed,
			items:    []models.PurchaseOrderItem{{ExpectedQty: 10, ReceivedQty: 0}},
			expected: models.POStatusClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := &models.PurchaseOrder{Status: tt.status, Items: tt.items}
			assert.Equal(t, tt.expected, po.DeriveStatus())
		})
	}
}

// ApplyReceiptTx runs against a mocked pgx pool so the locked read and the
// per-line bumps are asserted statement by statement.
type ApplyReceiptTxTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	service PurchaseOrdersService
	poID    uuid.UUID
	ctx     context.Context
}

func (suite *ApplyReceiptTxTestSuite) SetupTest() {
	mockPool, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mockPool
	suite.service = NewPurchaseOrdersService(&MockPurchaseOrderRepository{}, &MockPartyRepository{}, &MockWarehouseRepository{}, noopAudit{})
	suite.poID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *ApplyReceiptTxTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestApplyReceiptTxTestSuite(t *testing.T) {
	suite.Run(t, new(ApplyReceiptTxTestSuite))
}

func (suite *ApplyReceiptTxTestSuite) expectLockedOrder(status string) {
	suite.mock.ExpectQuery(`SELECT id, number, status`).
		WithArgs(suite.poID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "number", "status"}).
			AddRow(suite.poID, "PO-000007", status))
}

func (suite *ApplyReceiptTxTestSuite) TestBumpsAndDerivesStatus() {
	suite.mock.ExpectBegin()
	suite.expectLockedOrder(models.POStatusPartiallyReceived)
	suite.mock.ExpectExec(`UPDATE purchase_order_items`).
		WithArgs(3, suite.poID, "SKU-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT expected_qty, received_qty`).
		WithArgs(suite.poID).
		WillReturnRows(pgxmock.NewRows([]string{"expected_qty", "received_qty"}).
			AddRow(5, 5))
	suite.mock.ExpectExec(`UPDATE purchase_orders SET status`).
		WithArgs(models.POStatusFullyReceived, suite.poID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	tx, err := suite.mock.Begin(suite.ctx)
	assert.NoError(suite.T(), err)

	status, err := suite.service.ApplyReceiptTx(suite.ctx, tx, suite.poID, map[string]int{"SKU-1": 3})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.POStatusFullyReceived, status)
	assert.NoError(suite.T(), tx.Commit(suite.ctx))
}

func (suite *ApplyReceiptTxTestSuite) TestFullyReceivedOrderStillAcceptsGoods() {
	// A GRN drafted while the order was in flight may land after a sibling
	// GRN fills it; the surplus is tracked, not refused.
	suite.mock.ExpectBegin()
	suite.expectLockedOrder(models.POStatusFullyReceived)
	suite.mock.ExpectExec(`UPDATE purchase_order_items`).
		WithArgs(2, suite.poID, "SKU-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT expected_qty, received_qty`).
		WithArgs(suite.poID).
		WillReturnRows(pgxmock.NewRows([]string{"expected_qty", "received_qty"}).
			AddRow(5, 7))
	suite.mock.ExpectCommit()

	tx, err := suite.mock.Begin(suite.ctx)
	assert.NoError(suite.T(), err)

	status, err := suite.service.ApplyReceiptTx(suite.ctx, tx, suite.poID, map[string]int{"SKU-1": 2})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.POStatusFullyReceived, status)
	assert.NoError(suite.T(), tx.Commit(suite.ctx))
}

func (suite *ApplyReceiptTxTestSuite) TestClosedOrderRefused() {
	suite.mock.ExpectBegin()
	suite.expectLockedOrder(models.POStatusClosed)
	suite.mock.ExpectRollback()

	tx, err := suite.mock.Begin(suite.ctx)
	assert.NoError(suite.T(), err)

	_, err = suite.service.ApplyReceiptTx(suite.ctx, tx, suite.poID, map[string]int{"SKU-1": 2})
	assert.Equal(suite.T(), common.KindStateConflict, common.KindOf(err))
	assert.NoError(suite.T(), tx.Rollback(suite.ctx))
}

func (suite *ApplyReceiptTxTestSuite) TestUnknownSkuRefused() {
	suite.mock.ExpectBegin()
	suite.expectLockedOrder(models.POStatusConfirmed)
	suite.mock.ExpectExec(`UPDATE purchase_order_items`).
		WithArgs(2, suite.poID, "SKU-9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	tx, err := suite.mock.Begin(suite.ctx)
	assert.NoError(suite.T(), err)

	_, err = suite.service.ApplyReceiptTx(suite.ctx, tx, suite.poID, map[string]int{"SKU-9": 2})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
	assert.NoError(suite.T(), tx.Rollback(suite.ctx))
}
