package trade

import (
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineState represents the lifecycle state of a purchase line
type LineState string

const (
	LineStateDraft     LineState = "DRAFT"
	LineStateConfirmed LineState = "CONFIRMED"
	LineStateDone      LineState = "DONE"
	LineStateCancelled LineState = "CANCELLED"
)

// IsValid checks if the state is a known line state
func (s LineState) IsValid() bool {
	switch s {
	case LineStateDraft, LineStateConfirmed, LineStateDone, LineStateCancelled:
		return true
	}
	return false
}

// UnitOfMeasure is the unit a line is ordered in, with its rounding precision
type UnitOfMeasure struct {
	Code     string
	Rounding decimal.Decimal
}

// NewUnitOfMeasure creates a unit; a non-positive rounding falls back to the default
func NewUnitOfMeasure(code string, rounding decimal.Decimal) UnitOfMeasure {
	if !rounding.IsPositive() {
		rounding = shared.DefaultRounding
	}
	return UnitOfMeasure{Code: code, Rounding: rounding}
}

// Equal reports whether both units have the same code and rounding
func (u UnitOfMeasure) Equal(other UnitOfMeasure) bool {
	return u.Code == other.Code && u.Rounding.Equal(other.Rounding)
}

// PurchaseLine is one ordered quantity of a product within a purchase order
type PurchaseLine struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Description     string
	OrderedQuantity decimal.Decimal
	Unit            UnitOfMeasure
	UnitPrice       decimal.Decimal
	State           LineState
	// DestMoveIDs are moves this line feeds further down a chain,
	// MoveIDs the receipt moves generated directly from the line.
	DestMoveIDs []uuid.UUID
	MoveIDs     []uuid.UUID
}

// Amount is the line subtotal
func (l *PurchaseLine) Amount() decimal.Decimal {
	return l.OrderedQuantity.Mul(l.UnitPrice)
}

// LinkedMoveIDs returns the union of destination and direct moves, without duplicates
func (l *PurchaseLine) LinkedMoveIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(l.DestMoveIDs)+len(l.MoveIDs))
	ids := make([]uuid.UUID, 0, len(l.DestMoveIDs)+len(l.MoveIDs))
	for _, group := range [][]uuid.UUID{l.DestMoveIDs, l.MoveIDs} {
		for _, id := range group {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// LinkMove records a receipt move generated from the line
func (l *PurchaseLine) LinkMove(moveID uuid.UUID) {
	for _, id := range l.MoveIDs {
		if id == moveID {
			return
		}
	}
	l.MoveIDs = append(l.MoveIDs, moveID)
}

// LinkDestMove records a downstream move fed by the line
func (l *PurchaseLine) LinkDestMove(moveID uuid.UUID) {
	for _, id := range l.DestMoveIDs {
		if id == moveID {
			return
		}
	}
	l.DestMoveIDs = append(l.DestMoveIDs, moveID)
}
