package trade

import (
	"sort"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderConfirmed = "PurchaseOrderConfirmed"
	EventTypePurchaseOrderCancelled = "PurchaseOrderCancelled"
	EventTypePurchaseLineUpdated    = "PurchaseLineUpdated"
)

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID            uuid.UUID          `json:"order_id"`
	OrderNumber        string             `json:"order_number"`
	SupplierID         uuid.UUID          `json:"supplier_id"`
	ReceiptExpectation ReceiptExpectation `json:"receipt_expectation"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:            order.ID,
		OrderNumber:        order.OrderNumber,
		SupplierID:         order.SupplierID,
		ReceiptExpectation: order.ReceiptExpectation,
	}
}

// PurchaseOrderConfirmedEvent is raised when a purchase order is confirmed
type PurchaseOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	LineCount   int             `json:"line_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewPurchaseOrderConfirmedEvent creates a new PurchaseOrderConfirmedEvent
func NewPurchaseOrderConfirmedEvent(order *PurchaseOrder) *PurchaseOrderConfirmedEvent {
	return &PurchaseOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderConfirmed, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		LineCount:       len(order.Lines),
		TotalAmount:     order.TotalAmount(),
	}
}

// PurchaseOrderCancelledEvent is raised when a purchase order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason,omitempty"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder, reason string) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Reason:          reason,
	}
}

// PurchaseLineUpdatedEvent is raised when fields of a purchase line are written
type PurchaseLineUpdatedEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID       `json:"order_id"`
	LineID           uuid.UUID       `json:"line_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	Fields           []string        `json:"fields"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	OrderedQuantity  decimal.Decimal `json:"ordered_quantity"`
}

// NewPurchaseLineUpdatedEvent creates a new PurchaseLineUpdatedEvent
func NewPurchaseLineUpdatedEvent(order *PurchaseOrder, line *PurchaseLine, change LineChange) *PurchaseLineUpdatedEvent {
	fields := make([]string, 0, len(change.Fields))
	for f := range change.Fields {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return &PurchaseLineUpdatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePurchaseLineUpdated, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:          order.ID,
		LineID:           line.ID,
		ProductID:        line.ProductID,
		Fields:           fields,
		PreviousQuantity: change.PreviousQuantity,
		OrderedQuantity:  line.OrderedQuantity,
	}
}
