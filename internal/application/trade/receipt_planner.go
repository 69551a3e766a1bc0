package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/domain/trade"
)

// ReceiptPlanner creates what an order expects to receive when it is confirmed.
// It returns the created picking, or nil when nothing is planned.
type ReceiptPlanner interface {
	PlanReceipts(ctx context.Context, repos TransactionalRepositories, order *trade.PurchaseOrder) (*inventory.Picking, error)
}

// ReceiptPlannerFunc adapts a function to ReceiptPlanner
type ReceiptPlannerFunc func(ctx context.Context, repos TransactionalRepositories, order *trade.PurchaseOrder) (*inventory.Picking, error)

// PlanReceipts calls f
func (f ReceiptPlannerFunc) PlanReceipts(ctx context.Context, repos TransactionalRepositories, order *trade.PurchaseOrder) (*inventory.Picking, error) {
	return f(ctx, repos, order)
}

// ReceiptPlanners maps every receipt expectation to its planner
var ReceiptPlanners = map[trade.ReceiptExpectation]ReceiptPlanner{
	trade.ReceiptExpectationAutomatic: ReceiptPlannerFunc(planAutomaticReceipts),
	trade.ReceiptExpectationManual:    ReceiptPlannerFunc(planManualReceipts),
}

// ValidateReceiptPlanners fails when a declared receipt expectation has no planner
func ValidateReceiptPlanners() error {
	for _, e := range trade.ReceiptExpectations() {
		if _, ok := ReceiptPlanners[e]; !ok {
			return fmt.Errorf("no receipt planner registered for receipt expectation %q", e)
		}
	}
	return nil
}

// receiptPlannerFor returns the planner of an expectation
func receiptPlannerFor(e trade.ReceiptExpectation) (ReceiptPlanner, error) {
	planner, ok := ReceiptPlanners[e]
	if !ok {
		return nil, shared.NewDomainError("INVALID_RECEIPT_EXPECTATION", "Unknown receipt expectation: "+string(e))
	}
	return planner, nil
}

// planAutomaticReceipts creates one confirmed picking with a move per line
// for the full ordered quantity.
func planAutomaticReceipts(ctx context.Context, repos TransactionalRepositories, order *trade.PurchaseOrder) (*inventory.Picking, error) {
	picking, err := inventory.NewPicking(order.TenantID, order.ID, receiptReference(order), time.Now())
	if err != nil {
		return nil, err
	}

	for _, line := range order.Lines {
		if !line.OrderedQuantity.IsPositive() {
			continue
		}
		move, err := inventory.NewStockMove(order.TenantID, line.ProductID, line.OrderedQuantity, line.Unit.Code, picking.ScheduledDate)
		if err != nil {
			return nil, err
		}
		move.LinkToPurchaseLine(line.ID)
		if err := picking.AddMove(move); err != nil {
			return nil, err
		}
		line.LinkMove(move.ID)
	}

	if len(picking.Moves) == 0 {
		return nil, nil
	}
	if err := picking.Confirm(); err != nil {
		return nil, err
	}
	if err := repos.PickingRepo().Save(ctx, picking); err != nil {
		return nil, fmt.Errorf("save receipt picking: %w", err)
	}
	return picking, nil
}

// planManualReceipts plans nothing; receipts are registered later
func planManualReceipts(_ context.Context, _ TransactionalRepositories, _ *trade.PurchaseOrder) (*inventory.Picking, error) {
	return nil, nil
}

func receiptReference(order *trade.PurchaseOrder) string {
	return order.OrderNumber + "/IN"
}
