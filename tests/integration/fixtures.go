package integration

import (
	"context"
	"testing"

	appinv "github.com/erp/purchase/internal/application/inventory"
	apptrade "github.com/erp/purchase/internal/application/trade"
	"github.com/erp/purchase/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type purchaseFixture struct {
	db       *persistence.Database
	tenantID uuid.UUID
	orders   *apptrade.PurchaseOrderService
	moves    *appinv.StockMoveService
	moveRepo *persistence.GormStockMoveRepository
}

func newPurchaseFixture(t *testing.T, db *persistence.Database) *purchaseFixture {
	t.Helper()
	scope := persistence.NewGormTransactionScope(db.DB)
	moveRepo := persistence.NewGormStockMoveRepository(db.DB)
	return &purchaseFixture{
		db:       db,
		tenantID: uuid.New(),
		orders:   apptrade.NewPurchaseOrderService(persistence.NewGormPurchaseOrderRepository(db.DB), scope.PurchaseScope(), nil),
		moves:    appinv.NewStockMoveService(moveRepo, scope.StockScope(), nil),
		moveRepo: moveRepo,
	}
}

// confirmedOrder stores and confirms an automatic order with one line,
// which plans a single receipt move for the full quantity
func (f *purchaseFixture) confirmedOrder(t *testing.T, quantity float64) *apptrade.PurchaseOrderResponse {
	t.Helper()
	ctx := context.Background()
	created, err := f.orders.Create(ctx, f.tenantID, apptrade.CreatePurchaseOrderRequest{
		SupplierID:   uuid.New(),
		SupplierName: "ACME",
		Lines: []apptrade.CreatePurchaseLineInput{{
			ProductID:   uuid.New(),
			ProductName: "Widget",
			Quantity:    qty(quantity),
			Unit:        "pcs",
			UnitPrice:   qty(2),
		}},
	})
	require.NoError(t, err)

	order, err := f.orders.Confirm(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	require.Len(t, order.Lines[0].MoveIDs, 1)
	return order
}

func (f *purchaseFixture) moveQuantity(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	m, err := f.moveRepo.FindByID(context.Background(), f.tenantID, id)
	require.NoError(t, err)
	return m.RequestedQuantity
}

func qty(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
