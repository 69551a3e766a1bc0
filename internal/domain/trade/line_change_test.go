package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func changeOf(fields ...LineField) LineChange {
	c := LineChange{LineID: uuid.New(), Fields: make(map[LineField]struct{})}
	for _, f := range fields {
		c.Fields[f] = struct{}{}
	}
	return c
}

func TestNeedsReconciliation(t *testing.T) {
	tests := []struct {
		name   string
		change LineChange
		state  LineState
		want   bool
	}{
		{"quantity on confirmed line", changeOf(FieldOrderedQuantity), LineStateConfirmed, true},
		{"unit on confirmed line", changeOf(FieldUnit), LineStateConfirmed, true},
		{"quantity and price on confirmed line", changeOf(FieldOrderedQuantity, FieldUnitPrice), LineStateConfirmed, true},
		{"price only", changeOf(FieldUnitPrice), LineStateConfirmed, false},
		{"nothing written", changeOf(), LineStateConfirmed, false},
		{"draft line", changeOf(FieldOrderedQuantity), LineStateDraft, false},
		{"done line", changeOf(FieldOrderedQuantity), LineStateDone, false},
		{"cancelled line", changeOf(FieldOrderedQuantity), LineStateCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsReconciliation(tt.change, tt.state))
		})
	}
}

func TestPurchaseLine_LinkedMoveIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	line := &PurchaseLine{DestMoveIDs: []uuid.UUID{a, b}}
	line.LinkMove(b)
	line.LinkMove(c)
	line.LinkMove(c)
	line.LinkDestMove(a)

	assert.Equal(t, []uuid.UUID{b, c}, line.MoveIDs)
	assert.Equal(t, []uuid.UUID{a, b, c}, line.LinkedMoveIDs())
	assert.Empty(t, (&PurchaseLine{}).LinkedMoveIDs())
}

func TestParseReceiptExpectation(t *testing.T) {
	e, err := ParseReceiptExpectation("")
	assert.NoError(t, err)
	assert.Equal(t, ReceiptExpectationAutomatic, e)

	e, err = ParseReceiptExpectation("manual")
	assert.NoError(t, err)
	assert.Equal(t, ReceiptExpectationManual, e)

	_, err = ParseReceiptExpectation("bogus")
	assert.Error(t, err)
	assert.Len(t, ReceiptExpectations(), 2)
}
