package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineField names a writable purchase line field
type LineField string

const (
	FieldOrderedQuantity LineField = "ordered_quantity"
	FieldUnit            LineField = "unit"
	FieldUnitPrice       LineField = "unit_price"
	FieldDescription     LineField = "description"
)

// LineUpdate carries the fields written on a purchase line. Nil fields are left untouched.
type LineUpdate struct {
	OrderedQuantity *decimal.Decimal
	Unit            *UnitOfMeasure
	UnitPrice       *decimal.Decimal
	Description     *string
}

// LineChange records which fields a line write touched
type LineChange struct {
	LineID           uuid.UUID
	Fields           map[LineField]struct{}
	PreviousQuantity decimal.Decimal
}

// Touches reports whether any of the given fields was written
func (c LineChange) Touches(fields ...LineField) bool {
	for _, f := range fields {
		if _, ok := c.Fields[f]; ok {
			return true
		}
	}
	return false
}

// NeedsReconciliation decides whether the linked moves must follow a line
// write: only when quantity or unit was written and the line is confirmed.
func NeedsReconciliation(change LineChange, state LineState) bool {
	if !change.Touches(FieldOrderedQuantity, FieldUnit) {
		return false
	}
	return state == LineStateConfirmed
}
