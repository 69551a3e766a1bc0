package trade

import (
	"context"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/trade"
)

// TransactionScope provides transactional access to the purchase repositories.
// A line write, the reduction of its moves and the receipts created for an
// order are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories sharing one transaction.
//
// Stock moves are stored on their own even though pickings own them: the
// reconciliation reads and locks individual moves by id.
type TransactionalRepositories interface {
	OrderRepo() trade.PurchaseOrderRepository
	MoveRepo() inventory.StockMoveRepository
	PickingRepo() inventory.PickingRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
// This is useful for testing.
type NoOpTransactionScope struct {
	orderRepo   trade.PurchaseOrderRepository
	moveRepo    inventory.StockMoveRepository
	pickingRepo inventory.PickingRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo trade.PurchaseOrderRepository,
	moveRepo inventory.StockMoveRepository,
	pickingRepo inventory.PickingRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		moveRepo:    moveRepo,
		pickingRepo: pickingRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the purchase order repository
func (s *NoOpTransactionScope) OrderRepo() trade.PurchaseOrderRepository {
	return s.orderRepo
}

// MoveRepo returns the stock move repository
func (s *NoOpTransactionScope) MoveRepo() inventory.StockMoveRepository {
	return s.moveRepo
}

// PickingRepo returns the picking repository
func (s *NoOpTransactionScope) PickingRepo() inventory.PickingRepository {
	return s.pickingRepo
}
