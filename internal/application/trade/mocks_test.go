package trade

import (
	"context"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByLineID(ctx context.Context, tenantID, lineID uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockPickingRepository is a mock implementation of PickingRepository
type MockPickingRepository struct {
	mock.Mock
}

func (m *MockPickingRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Picking, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Picking), args.Error(1)
}

func (m *MockPickingRepository) Save(ctx context.Context, picking *inventory.Picking) error {
	args := m.Called(ctx, picking)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// memoryMoveRepository keeps stock moves in a map and records batch saves.
// FindReducible filters and orders like the database query.
type memoryMoveRepository struct {
	moves     map[uuid.UUID]*inventory.StockMove
	batches   [][]*inventory.StockMove
	saveErr   error
	findCalls int
}

func newMemoryMoveRepository(moves ...*inventory.StockMove) *memoryMoveRepository {
	r := &memoryMoveRepository{moves: make(map[uuid.UUID]*inventory.StockMove)}
	for _, m := range moves {
		r.moves[m.ID] = m
	}
	return r
}

func (r *memoryMoveRepository) FindByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*inventory.StockMove, error) {
	m, ok := r.moves[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *memoryMoveRepository) FindByIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]*inventory.StockMove, error) {
	r.findCalls++
	out := make([]*inventory.StockMove, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.moves[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMoveRepository) FindByPurchaseLine(_ context.Context, _ uuid.UUID, lineID uuid.UUID) ([]*inventory.StockMove, error) {
	out := make([]*inventory.StockMove, 0)
	for _, m := range r.moves {
		if m.PurchaseLineID != nil && *m.PurchaseLineID == lineID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMoveRepository) FindReducible(_ context.Context, _ uuid.UUID, ids []uuid.UUID, productID uuid.UUID, excluded []inventory.MoveState) ([]*inventory.StockMove, error) {
	out := make([]*inventory.StockMove, 0, len(ids))
	for _, id := range ids {
		m, ok := r.moves[id]
		if !ok || m.ProductID != productID {
			continue
		}
		skip := false
		for _, s := range excluded {
			if m.State == s {
				skip = true
			}
		}
		if !skip {
			out = append(out, m)
		}
	}
	inventory.SortForReduction(out)
	return out, nil
}

func (r *memoryMoveRepository) Save(_ context.Context, move *inventory.StockMove) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.moves[move.ID] = move
	return nil
}

func (r *memoryMoveRepository) SaveBatch(_ context.Context, moves []*inventory.StockMove) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.batches = append(r.batches, moves)
	for _, m := range moves {
		r.moves[m.ID] = m
	}
	return nil
}
