package trade

import (
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a purchase order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusDone      OrderStatus = "DONE"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusDone || target == OrderStatusCancelled
	}
	return false
}

// lineState is the state lines take while the order is in status s
func (s OrderStatus) lineState() LineState {
	switch s {
	case OrderStatusConfirmed:
		return LineStateConfirmed
	case OrderStatusDone:
		return LineStateDone
	case OrderStatusCancelled:
		return LineStateCancelled
	}
	return LineStateDraft
}

// PurchaseOrder is the aggregate root for purchase orders
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber        string
	SupplierID         uuid.UUID
	SupplierName       string
	Status             OrderStatus
	ReceiptExpectation ReceiptExpectation
	Remark             string
	Lines              []*PurchaseLine
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
}

// NewPurchaseOrder creates a new draft purchase order
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber string, supplierID uuid.UUID, supplierName string, expectation ReceiptExpectation) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if expectation == "" {
		expectation = DefaultReceiptExpectation
	}
	if !expectation.IsValid() {
		return nil, shared.NewDomainError("INVALID_RECEIPT_EXPECTATION", "Unknown receipt expectation: "+string(expectation))
	}

	order := &PurchaseOrder{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(tenantID),
		OrderNumber:        orderNumber,
		SupplierID:         supplierID,
		SupplierName:       supplierName,
		Status:             OrderStatusDraft,
		ReceiptExpectation: expectation,
		Lines:              make([]*PurchaseLine, 0),
	}
	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// AddLine adds a line to a draft order
func (o *PurchaseOrder) AddLine(productID uuid.UUID, productName string, quantity decimal.Decimal, unit UnitOfMeasure, unitPrice decimal.Decimal) (*PurchaseLine, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft order")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if unit.Code == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}

	line := &PurchaseLine{
		ID:              uuid.New(),
		OrderID:         o.ID,
		ProductID:       productID,
		ProductName:     productName,
		OrderedQuantity: quantity,
		Unit:            NewUnitOfMeasure(unit.Code, unit.Rounding),
		UnitPrice:       unitPrice,
		State:           LineStateDraft,
		DestMoveIDs:     make([]uuid.UUID, 0),
		MoveIDs:         make([]uuid.UUID, 0),
	}
	o.Lines = append(o.Lines, line)
	o.Touch()
	return line, nil
}

// GetLine returns the line with the given ID, or nil
func (o *PurchaseOrder) GetLine(lineID uuid.UUID) *PurchaseLine {
	for _, l := range o.Lines {
		if l.ID == lineID {
			return l
		}
	}
	return nil
}

// TotalAmount sums the line subtotals
func (o *PurchaseOrder) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// Confirm confirms the order and every line on it
func (o *PurchaseOrder) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", "Cannot confirm order in "+string(o.Status)+" status")
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot confirm order without lines")
	}
	if !o.ReceiptExpectation.IsValid() {
		return shared.NewDomainError("INVALID_RECEIPT_EXPECTATION", "Unknown receipt expectation: "+string(o.ReceiptExpectation))
	}

	now := time.Now()
	o.setStatus(OrderStatusConfirmed)
	o.ConfirmedAt = &now
	o.AddDomainEvent(NewPurchaseOrderConfirmedEvent(o))
	return nil
}

// Cancel cancels the order and its lines
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel order in "+string(o.Status)+" status")
	}
	now := time.Now()
	o.setStatus(OrderStatusCancelled)
	o.CancelledAt = &now
	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, reason))
	return nil
}

// Complete marks a confirmed order as fully received
func (o *PurchaseOrder) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusDone) {
		return shared.NewDomainError("INVALID_STATE", "Cannot complete order in "+string(o.Status)+" status")
	}
	o.setStatus(OrderStatusDone)
	return nil
}

func (o *PurchaseOrder) setStatus(status OrderStatus) {
	o.Status = status
	for _, l := range o.Lines {
		l.State = status.lineState()
	}
	o.Touch()
}

// UpdateLine writes the given fields on a line and returns what was written.
// Draft and confirmed orders accept writes; a confirmed line may go down to
// zero, a draft line must stay positive.
func (o *PurchaseOrder) UpdateLine(lineID uuid.UUID, upd LineUpdate) (LineChange, error) {
	if o.Status != OrderStatusDraft && o.Status != OrderStatusConfirmed {
		return LineChange{}, shared.NewDomainError("INVALID_STATE", "Cannot modify lines of a "+string(o.Status)+" order")
	}
	line := o.GetLine(lineID)
	if line == nil {
		return LineChange{}, shared.NewDomainError("LINE_NOT_FOUND", "Purchase line not found")
	}

	change := LineChange{
		LineID:           lineID,
		Fields:           make(map[LineField]struct{}),
		PreviousQuantity: line.OrderedQuantity,
	}

	if upd.OrderedQuantity != nil {
		q := *upd.OrderedQuantity
		if q.IsNegative() {
			return LineChange{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
		}
		if o.Status == OrderStatusDraft && q.IsZero() {
			return LineChange{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
	}
	if upd.UnitPrice != nil && upd.UnitPrice.IsNegative() {
		return LineChange{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if upd.Unit != nil && upd.Unit.Code == "" {
		return LineChange{}, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}

	if upd.OrderedQuantity != nil {
		line.OrderedQuantity = *upd.OrderedQuantity
		change.Fields[FieldOrderedQuantity] = struct{}{}
	}
	if upd.Unit != nil {
		line.Unit = NewUnitOfMeasure(upd.Unit.Code, upd.Unit.Rounding)
		change.Fields[FieldUnit] = struct{}{}
	}
	if upd.UnitPrice != nil {
		line.UnitPrice = *upd.UnitPrice
		change.Fields[FieldUnitPrice] = struct{}{}
	}
	if upd.Description != nil {
		line.Description = *upd.Description
		change.Fields[FieldDescription] = struct{}{}
	}

	if len(change.Fields) > 0 {
		o.AddDomainEvent(NewPurchaseLineUpdatedEvent(o, line, change))
		o.Touch()
	}
	return change, nil
}
