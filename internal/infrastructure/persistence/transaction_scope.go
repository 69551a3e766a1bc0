package persistence

import (
	"context"

	appinv "github.com/erp/purchase/internal/application/inventory"
	appproc "github.com/erp/purchase/internal/application/procurement"
	apptrade "github.com/erp/purchase/internal/application/trade"
	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/procurement"
	"github.com/erp/purchase/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application transaction scopes using
// GORM transactions. Every repository handed to fn shares the transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

func (s *GormTransactionScope) run(ctx context.Context, fn func(repos *gormTransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// PurchaseScope adapts the scope to purchase order operations
func (s *GormTransactionScope) PurchaseScope() apptrade.TransactionScope {
	return purchaseScope{s}
}

// StockScope adapts the scope to stock move operations
func (s *GormTransactionScope) StockScope() appinv.TransactionScope {
	return stockScope{s}
}

// ProcurementScope adapts the scope to purchase request operations
func (s *GormTransactionScope) ProcurementScope() appproc.TransactionScope {
	return procurementScope{s}
}

type purchaseScope struct{ *GormTransactionScope }

func (s purchaseScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

type stockScope struct{ *GormTransactionScope }

func (s stockScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

type procurementScope struct{ *GormTransactionScope }

func (s procurementScope) Execute(ctx context.Context, fn func(repos appproc.TransactionalRepositories) error) error {
	return s.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the purchase order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// MoveRepo returns the stock move repository scoped to the current transaction.
func (r *gormTransactionalRepositories) MoveRepo() inventory.StockMoveRepository {
	return NewGormStockMoveRepository(r.tx)
}

// PickingRepo returns the picking repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PickingRepo() inventory.PickingRepository {
	return NewGormPickingRepository(r.tx)
}

// RequestRepo returns the purchase request repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RequestRepo() procurement.PurchaseRequestRepository {
	return NewGormPurchaseRequestRepository(r.tx)
}

var (
	_ apptrade.TransactionScope          = purchaseScope{}
	_ appinv.TransactionScope            = stockScope{}
	_ appproc.TransactionScope           = procurementScope{}
	_ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appinv.TransactionalRepositories   = (*gormTransactionalRepositories)(nil)
	_ appproc.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
)
