package inventory

import (
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoveState represents the lifecycle state of a stock move
type MoveState string

const (
	MoveStateDraft     MoveState = "DRAFT"
	MoveStateConfirmed MoveState = "CONFIRMED"
	MoveStateAssigned  MoveState = "ASSIGNED"
	MoveStateDone      MoveState = "DONE"
	MoveStateCancelled MoveState = "CANCELLED"
)

// FinalMoveStates are the states a move never leaves
var FinalMoveStates = []MoveState{MoveStateCancelled, MoveStateDone}

// IsValid checks if the state is a known move state
func (s MoveState) IsValid() bool {
	switch s {
	case MoveStateDraft, MoveStateConfirmed, MoveStateAssigned, MoveStateDone, MoveStateCancelled:
		return true
	}
	return false
}

// IsFinal returns true for done and cancelled moves
func (s MoveState) IsFinal() bool {
	return s == MoveStateDone || s == MoveStateCancelled
}

// String returns the string representation
func (s MoveState) String() string {
	return string(s)
}

// StockMove is a planned transfer of a product quantity, typically a receipt
// generated from a purchase line.
//
// FulfilledQuantity only grows and never exceeds RequestedQuantity; the
// requested quantity may be reduced down to the fulfilled quantity, not below.
type StockMove struct {
	shared.BaseAggregateRoot
	PurchaseLineID    *uuid.UUID
	PickingID         *uuid.UUID
	ProductID         uuid.UUID
	RequestedQuantity decimal.Decimal
	FulfilledQuantity decimal.Decimal
	UnitCode          string
	State             MoveState
	ScheduledDate     time.Time
	CancelledAt       *time.Time
}

// NewStockMove creates a draft stock move
func NewStockMove(tenantID, productID uuid.UUID, quantity decimal.Decimal, unitCode string, scheduled time.Time) (*StockMove, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Move quantity cannot be negative")
	}
	if scheduled.IsZero() {
		scheduled = time.Now()
	}

	return &StockMove{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(tenantID),
		ProductID:         productID,
		RequestedQuantity: quantity,
		FulfilledQuantity: decimal.Zero,
		UnitCode:          unitCode,
		State:             MoveStateDraft,
		ScheduledDate:     scheduled,
	}, nil
}

// LinkToPurchaseLine records the purchase line the move was generated from
func (m *StockMove) LinkToPurchaseLine(lineID uuid.UUID) {
	m.PurchaseLineID = &lineID
}

// Confirm moves a draft move to confirmed
func (m *StockMove) Confirm() error {
	if m.State != MoveStateDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft moves can be confirmed")
	}
	m.State = MoveStateConfirmed
	m.Touch()
	return nil
}

// Assign marks a confirmed move as having its quantity reserved
func (m *StockMove) Assign() error {
	if m.State != MoveStateConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Only confirmed moves can be assigned")
	}
	m.State = MoveStateAssigned
	m.Touch()
	return nil
}

// RecordFulfilled sets the fulfilled quantity. The quantity never decreases
// and never exceeds the requested quantity.
func (m *StockMove) RecordFulfilled(quantity decimal.Decimal) error {
	if m.State.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot record fulfilment on a "+m.State.String()+" move")
	}
	if quantity.LessThan(m.FulfilledQuantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Fulfilled quantity cannot decrease")
	}
	if quantity.GreaterThan(m.RequestedQuantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Fulfilled quantity cannot exceed requested quantity")
	}
	m.FulfilledQuantity = quantity
	m.Touch()
	return nil
}

// Complete marks the move as done
func (m *StockMove) Complete() error {
	if m.State.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", "Move is already "+m.State.String())
	}
	m.State = MoveStateDone
	m.Touch()
	return nil
}

// RemovableQuantity is the part of the requested quantity not yet fulfilled
func (m *StockMove) RemovableQuantity() decimal.Decimal {
	return m.RequestedQuantity.Sub(m.FulfilledQuantity)
}

// Reduce removes quantity from the requested quantity. A move whose requested
// quantity becomes zero at the given rounding is cancelled.
func (m *StockMove) Reduce(quantity, rounding decimal.Decimal) error {
	if m.State.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot reduce a "+m.State.String()+" move")
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Reduction cannot be negative")
	}
	if quantity.GreaterThan(m.RemovableQuantity()) {
		return NewInsufficientRemovableError(m.RemovableQuantity(), quantity)
	}

	if quantity.IsPositive() {
		before := m.RequestedQuantity
		m.RequestedQuantity = m.RequestedQuantity.Sub(quantity)
		m.AddDomainEvent(NewStockMoveReducedEvent(m, before, quantity))
		m.Touch()
	}

	if shared.IsZeroRounded(m.RequestedQuantity, rounding) {
		return m.Cancel()
	}
	return nil
}

// Cancel cancels the move. Done moves cannot be cancelled.
func (m *StockMove) Cancel() error {
	switch m.State {
	case MoveStateCancelled:
		return nil
	case MoveStateDone:
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a done move")
	}
	now := time.Now()
	m.State = MoveStateCancelled
	m.CancelledAt = &now
	m.AddDomainEvent(NewStockMoveCancelledEvent(m))
	m.Touch()
	return nil
}

// Split detaches quantity into a new move with the same product, line and
// state. Only the unfulfilled part of the move can be split off.
func (m *StockMove) Split(quantity decimal.Decimal) (*StockMove, error) {
	if m.State.IsFinal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot split a "+m.State.String()+" move")
	}
	if !quantity.IsPositive() || quantity.GreaterThanOrEqual(m.RequestedQuantity) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Split quantity must be positive and below the requested quantity")
	}
	if quantity.GreaterThan(m.RemovableQuantity()) {
		return nil, NewInsufficientRemovableError(m.RemovableQuantity(), quantity)
	}

	split, err := NewStockMove(m.TenantID, m.ProductID, quantity, m.UnitCode, m.ScheduledDate)
	if err != nil {
		return nil, err
	}
	split.PurchaseLineID = m.PurchaseLineID
	split.PickingID = m.PickingID
	split.State = m.State

	m.RequestedQuantity = m.RequestedQuantity.Sub(quantity)
	m.Touch()
	return split, nil
}
