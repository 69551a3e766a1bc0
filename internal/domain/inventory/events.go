package inventory

import (
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeStockMove names the stock move aggregate in events
const AggregateTypeStockMove = "StockMove"

const (
	EventTypeStockMoveReduced   = "StockMoveReduced"
	EventTypeStockMoveCancelled = "StockMoveCancelled"
	EventTypePickingConfirmed   = "PickingConfirmed"
)

// StockMoveReducedEvent is raised when quantity is stripped from a move
type StockMoveReducedEvent struct {
	shared.BaseDomainEvent
	MoveID            uuid.UUID       `json:"move_id"`
	PurchaseLineID    *uuid.UUID      `json:"purchase_line_id,omitempty"`
	ProductID         uuid.UUID       `json:"product_id"`
	PreviousQuantity  decimal.Decimal `json:"previous_quantity"`
	RemovedQuantity   decimal.Decimal `json:"removed_quantity"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
}

// NewStockMoveReducedEvent creates a StockMoveReducedEvent
func NewStockMoveReducedEvent(m *StockMove, previous, removed decimal.Decimal) *StockMoveReducedEvent {
	return &StockMoveReducedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockMoveReduced, AggregateTypeStockMove, m.ID, m.TenantID),
		MoveID:            m.ID,
		PurchaseLineID:    m.PurchaseLineID,
		ProductID:         m.ProductID,
		PreviousQuantity:  previous,
		RemovedQuantity:   removed,
		RequestedQuantity: m.RequestedQuantity,
	}
}

// StockMoveCancelledEvent is raised when a move is cancelled
type StockMoveCancelledEvent struct {
	shared.BaseDomainEvent
	MoveID         uuid.UUID  `json:"move_id"`
	PurchaseLineID *uuid.UUID `json:"purchase_line_id,omitempty"`
	ProductID      uuid.UUID  `json:"product_id"`
}

// NewStockMoveCancelledEvent creates a StockMoveCancelledEvent
func NewStockMoveCancelledEvent(m *StockMove) *StockMoveCancelledEvent {
	return &StockMoveCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMoveCancelled, AggregateTypeStockMove, m.ID, m.TenantID),
		MoveID:          m.ID,
		PurchaseLineID:  m.PurchaseLineID,
		ProductID:       m.ProductID,
	}
}

// PickingConfirmedEvent is raised when a receipt picking is confirmed
type PickingConfirmedEvent struct {
	shared.BaseDomainEvent
	PickingID       uuid.UUID `json:"picking_id"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	MoveCount       int       `json:"move_count"`
}

// NewPickingConfirmedEvent creates a PickingConfirmedEvent
func NewPickingConfirmedEvent(p *Picking) *PickingConfirmedEvent {
	return &PickingConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickingConfirmed, AggregateTypePicking, p.ID, p.TenantID),
		PickingID:       p.ID,
		PurchaseOrderID: p.PurchaseOrderID,
		MoveCount:       len(p.Moves),
	}
}
