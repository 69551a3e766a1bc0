package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PurchaseRequestRepository persists purchase requests with their lines
type PurchaseRequestRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseRequest, error)
	// FindForGrouping returns draft requests starting on dateStart that request
	// productID, restricted to groupID when it is not nil, oldest first.
	FindForGrouping(ctx context.Context, tenantID uuid.UUID, dateStart time.Time, groupID *uuid.UUID, productID uuid.UUID) ([]*PurchaseRequest, error)
	Save(ctx context.Context, request *PurchaseRequest) error
}

// RequisitionRepository persists requisitions with their lines
type RequisitionRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Requisition, error)
	Save(ctx context.Context, requisition *Requisition) error
}

// SupplierInfoRepository looks up vendor product data
type SupplierInfoRepository interface {
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]SupplierInfo, error)
	Save(ctx context.Context, tenantID uuid.UUID, info SupplierInfo) error
}
