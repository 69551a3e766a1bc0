package trade

import (
	"context"

	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order with its lines for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByOrderNumber finds a purchase order by order number for a tenant
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrder, error)

	// FindByLineID finds the purchase order owning a line
	FindByLineID(ctx context.Context, tenantID, lineID uuid.UUID) (*PurchaseOrder, error)

	// Save creates a new purchase order
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock updates an order, failing with CONCURRENT_MODIFICATION
	// when the stored version moved since the order was loaded
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error
}
