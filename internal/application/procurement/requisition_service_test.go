package procurement

import (
	"context"
	"testing"

	"github.com/erp/purchase/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRequisitionRepository struct {
	mock.Mock
}

func (m *MockRequisitionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*procurement.Requisition, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Requisition), args.Error(1)
}

func (m *MockRequisitionRepository) Save(ctx context.Context, r *procurement.Requisition) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type MockSupplierInfoRepository struct {
	mock.Mock
}

func (m *MockSupplierInfoRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]procurement.SupplierInfo, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.SupplierInfo), args.Error(1)
}

func (m *MockSupplierInfoRepository) Save(ctx context.Context, tenantID uuid.UUID, info procurement.SupplierInfo) error {
	args := m.Called(ctx, tenantID, info)
	return args.Error(0)
}

func TestRequisitionService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	vendorA, vendorB := uuid.New(), uuid.New()

	requisitionRepo := new(MockRequisitionRepository)
	supplierRepo := new(MockSupplierInfoRepository)
	requisitionRepo.On("Save", ctx, mock.AnythingOfType("*procurement.Requisition")).Return(nil)
	supplierRepo.On("FindByProduct", ctx, tenantID, productID).Return([]procurement.SupplierInfo{
		{SupplierID: vendorA, ProductID: productID, ProductCode: "A-1", ProductName: "Gadget A"},
		{SupplierID: vendorB, ProductID: productID, ProductCode: "B-1", ProductName: "Gadget B"},
	}, nil).Once()

	service := NewRequisitionService(requisitionRepo, supplierRepo)
	resp, err := service.Create(ctx, tenantID, CreateRequisitionRequest{
		Reference:  "CFT-0001",
		SupplierID: &vendorB,
		Lines: []RequisitionLineInput{
			{ProductID: productID, Quantity: decimal.NewFromInt(4)},
			{ProductID: productID, Quantity: decimal.NewFromInt(1), Description: "urgent "},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "[B-1] Gadget B\n", resp.Lines[0].Description)
	assert.Equal(t, "urgent [B-1] Gadget B\n", resp.Lines[1].Description)
	supplierRepo.AssertExpectations(t)
}

func TestRequisitionService_Create_InvalidReference(t *testing.T) {
	service := NewRequisitionService(new(MockRequisitionRepository), new(MockSupplierInfoRepository))
	_, err := service.Create(context.Background(), uuid.New(), CreateRequisitionRequest{})
	assert.Error(t, err)
}

func TestRequisitionService_SupplierInfos(t *testing.T) {
	ctx := context.Background()
	tenantID, supplierID, productID := uuid.New(), uuid.New(), uuid.New()

	t.Run("register trims and saves", func(t *testing.T) {
		supplierRepo := new(MockSupplierInfoRepository)
		want := procurement.SupplierInfo{SupplierID: supplierID, ProductID: productID, ProductCode: "V-9", ProductName: "Screw"}
		supplierRepo.On("Save", ctx, tenantID, want).Return(nil)
		service := NewRequisitionService(new(MockRequisitionRepository), supplierRepo)

		resp, err := service.RegisterSupplierInfo(ctx, tenantID, SupplierInfoRequest{
			SupplierID:  supplierID,
			ProductID:   productID,
			ProductCode: " V-9 ",
			ProductName: "Screw",
		})
		require.NoError(t, err)
		assert.Equal(t, "V-9", resp.ProductCode)
		supplierRepo.AssertExpectations(t)
	})

	t.Run("register requires supplier and product", func(t *testing.T) {
		supplierRepo := new(MockSupplierInfoRepository)
		service := NewRequisitionService(new(MockRequisitionRepository), supplierRepo)

		_, err := service.RegisterSupplierInfo(ctx, tenantID, SupplierInfoRequest{ProductID: productID})
		require.Error(t, err)
		supplierRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("list keeps repository order", func(t *testing.T) {
		supplierRepo := new(MockSupplierInfoRepository)
		other := uuid.New()
		supplierRepo.On("FindByProduct", ctx, tenantID, productID).Return([]procurement.SupplierInfo{
			{SupplierID: other, ProductID: productID, ProductName: "First"},
			{SupplierID: supplierID, ProductID: productID, ProductName: "Second"},
		}, nil)
		service := NewRequisitionService(new(MockRequisitionRepository), supplierRepo)

		list, err := service.ListSupplierInfos(ctx, tenantID, productID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, other, list[0].SupplierID)
		assert.Equal(t, "Second", list[1].ProductName)
	})
}
