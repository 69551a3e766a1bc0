package procurement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/purchase/internal/domain/procurement"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPurchaseRequestRepository is a mock implementation of PurchaseRequestRepository
type MockPurchaseRequestRepository struct {
	mock.Mock
}

func (m *MockPurchaseRequestRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseRequest, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRequestRepository) FindForGrouping(ctx context.Context, tenantID uuid.UUID, dateStart time.Time, groupID *uuid.UUID, productID uuid.UUID) ([]*procurement.PurchaseRequest, error) {
	args := m.Called(ctx, tenantID, dateStart, groupID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*procurement.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRequestRepository) Save(ctx context.Context, request *procurement.PurchaseRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

type fakeLock struct {
	locker *fakeLocker
	key    string
}

func (l *fakeLock) Release(_ context.Context) error {
	l.locker.released = append(l.locker.released, l.key)
	return nil
}

// fakeLocker records obtained and released keys
type fakeLocker struct {
	obtained []string
	released []string
	err      error
}

func (f *fakeLocker) Obtain(_ context.Context, key string, _ time.Duration) (shared.Lock, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.obtained = append(f.obtained, key)
	return &fakeLock{locker: f, key: key}, nil
}

var today = time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC)

func newTestService(repo *MockPurchaseRequestRepository, locker shared.Locker, groupByDate bool) *PurchaseRequestService {
	s := NewPurchaseRequestService(repo, NewNoOpTransactionScope(repo), locker, PurchaseRequestServiceConfig{GroupByDate: groupByDate}, nil)
	s.now = func() time.Time { return today }
	return s
}

func need(productID uuid.UUID, q int64, origin string) ProcurementInput {
	required := today.Add(48 * time.Hour)
	return ProcurementInput{
		ProductID:    productID,
		ProductName:  "Widget",
		Quantity:     decimal.NewFromInt(q),
		Unit:         "pcs",
		Origin:       origin,
		DateRequired: &required,
	}
}

func TestPurchaseRequestService_Procure_GroupByDate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	dateStart := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	t.Run("merges into the existing request", func(t *testing.T) {
		repo := new(MockPurchaseRequestRepository)
		locker := &fakeLocker{}
		existing := procurement.NewPurchaseRequest(tenantID, "SO001", dateStart, nil)
		_, _, err := existing.AddProcurement(procurement.Procurement{
			ProductID: productID, Quantity: decimal.NewFromInt(5), DateRequired: today.Add(48 * time.Hour),
		})
		require.NoError(t, err)

		repo.On("FindForGrouping", mock.Anything, tenantID, dateStart, (*uuid.UUID)(nil), productID).
			Return([]*procurement.PurchaseRequest{existing}, nil).Once()
		repo.On("Save", mock.Anything, existing).Return(nil).Once()

		resp, err := newTestService(repo, locker, true).Procure(ctx, tenantID, ProcureRequest{
			Procurements: []ProcurementInput{need(productID, 3, "SO002"), need(productID, 2, "SO001")},
		})
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, existing.ID, resp[0].ID)
		assert.Equal(t, "SO001, SO002", resp[0].Origin)
		require.Len(t, resp[0].Lines, 1)
		assert.True(t, decimal.NewFromInt(10).Equal(resp[0].Lines[0].Quantity))

		assert.Equal(t, []string{"purchase_request:" + tenantID.String() + ":2026-05-04:any"}, locker.obtained)
		assert.Equal(t, locker.obtained, locker.released)
		repo.AssertExpectations(t)
	})

	t.Run("creates a request when none matches", func(t *testing.T) {
		repo := new(MockPurchaseRequestRepository)
		repo.On("FindForGrouping", mock.Anything, tenantID, dateStart, (*uuid.UUID)(nil), productID).
			Return([]*procurement.PurchaseRequest{}, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*procurement.PurchaseRequest")).Return(nil)

		resp, err := newTestService(repo, &fakeLocker{}, true).Procure(ctx, tenantID, ProcureRequest{
			Procurements: []ProcurementInput{need(productID, 3, "SO010")},
		})
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, "SO010", resp[0].Origin)
		assert.Equal(t, dateStart, resp[0].DateStart)
		assert.Equal(t, "DRAFT", resp[0].State)
	})

	t.Run("fixed group keys the lookup", func(t *testing.T) {
		repo := new(MockPurchaseRequestRepository)
		groupID := uuid.New()
		repo.On("FindForGrouping", mock.Anything, tenantID, dateStart, &groupID, productID).
			Return([]*procurement.PurchaseRequest{}, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*procurement.PurchaseRequest")).Return(nil)

		resp, err := newTestService(repo, nil, true).Procure(ctx, tenantID, ProcureRequest{
			Procurements: []ProcurementInput{need(productID, 1, "")},
			Rule:         RuleInput{Propagation: "fixed", FixedGroupID: &groupID},
		})
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, &groupID, resp[0].GroupID)
		repo.AssertExpectations(t)
	})

	t.Run("lock not obtained", func(t *testing.T) {
		repo := new(MockPurchaseRequestRepository)
		locker := &fakeLocker{err: shared.ErrLockNotObtained}

		_, err := newTestService(repo, locker, true).Procure(ctx, tenantID, ProcureRequest{
			Procurements: []ProcurementInput{need(productID, 1, "SO1")},
		})
		assert.ErrorIs(t, err, shared.ErrLockNotObtained)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save failure", func(t *testing.T) {
		repo := new(MockPurchaseRequestRepository)
		locker := &fakeLocker{}
		repo.On("FindForGrouping", mock.Anything, tenantID, dateStart, (*uuid.UUID)(nil), productID).
			Return([]*procurement.PurchaseRequest{}, nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		_, err := newTestService(repo, locker, true).Procure(ctx, tenantID, ProcureRequest{
			Procurements: []ProcurementInput{need(productID, 1, "SO1")},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Len(t, locker.released, 1)
	})
}

func TestPurchaseRequestService_Procure_NoGrouping(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	repo := new(MockPurchaseRequestRepository)
	locker := &fakeLocker{}
	repo.On("Save", mock.Anything, mock.AnythingOfType("*procurement.PurchaseRequest")).Return(nil)

	resp, err := newTestService(repo, locker, true).Procure(ctx, tenantID, ProcureRequest{
		Procurements: []ProcurementInput{need(productID, 1, "SO1"), need(productID, 2, "SO2")},
		Rule:         RuleInput{GroupByDate: new(bool)},
	})
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.NotEqual(t, resp[0].ID, resp[1].ID)
	assert.Empty(t, locker.obtained)
	repo.AssertNotCalled(t, "FindForGrouping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseRequestService_Procure_InvalidNeed(t *testing.T) {
	repo := new(MockPurchaseRequestRepository)
	_, err := newTestService(repo, nil, true).Procure(context.Background(), uuid.New(), ProcureRequest{
		Procurements: []ProcurementInput{{ProductID: uuid.New(), Quantity: decimal.Zero}},
	})
	assert.Equal(t, "INVALID_QUANTITY", shared.CodeOf(err))
}
