package inventory

import (
	"context"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/trade"
)

// TransactionScope provides transactional access to stock moves and the
// purchase orders whose lines reference them.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories sharing one transaction
type TransactionalRepositories interface {
	MoveRepo() inventory.StockMoveRepository
	OrderRepo() trade.PurchaseOrderRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
type NoOpTransactionScope struct {
	moveRepo  inventory.StockMoveRepository
	orderRepo trade.PurchaseOrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(moveRepo inventory.StockMoveRepository, orderRepo trade.PurchaseOrderRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{moveRepo: moveRepo, orderRepo: orderRepo}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MoveRepo returns the stock move repository
func (s *NoOpTransactionScope) MoveRepo() inventory.StockMoveRepository {
	return s.moveRepo
}

// OrderRepo returns the purchase order repository
func (s *NoOpTransactionScope) OrderRepo() trade.PurchaseOrderRepository {
	return s.orderRepo
}
