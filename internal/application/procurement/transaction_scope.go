package procurement

import (
	"context"

	"github.com/erp/purchase/internal/domain/procurement"
)

// TransactionScope provides transactional access to procurement repositories
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories sharing one transaction
type TransactionalRepositories interface {
	RequestRepo() procurement.PurchaseRequestRepository
}

// NoOpTransactionScope runs the function against a plain repository. Used in tests.
type NoOpTransactionScope struct {
	requestRepo procurement.PurchaseRequestRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(requestRepo procurement.PurchaseRequestRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{requestRepo: requestRepo}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RequestRepo returns the purchase request repository
func (s *NoOpTransactionScope) RequestRepo() procurement.PurchaseRequestRepository {
	return s.requestRepo
}
