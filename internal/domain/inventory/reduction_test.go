package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitRounding = decimal.NewFromFloat(0.01)

func qty(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func newConfirmedMove(t *testing.T, productID uuid.UUID, requested, fulfilled float64) *StockMove {
	t.Helper()
	m, err := NewStockMove(uuid.New(), productID, qty(requested), "pcs", time.Now())
	require.NoError(t, err)
	require.NoError(t, m.Confirm())
	if fulfilled > 0 {
		require.NoError(t, m.RecordFulfilled(qty(fulfilled)))
	}
	return m
}

func requested(moves ...*StockMove) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.RequestedQuantity.String()
	}
	return out
}

// ============================================
// Ordering and totals
// ============================================

func TestSortForReduction(t *testing.T) {
	productID := uuid.New()
	big := newConfirmedMove(t, productID, 42, 0)
	smallReserved := newConfirmedMove(t, productID, 22, 11)
	smallFree := newConfirmedMove(t, productID, 22, 0)

	moves := []*StockMove{big, smallReserved, smallFree}
	SortForReduction(moves)

	assert.Equal(t, []*StockMove{smallFree, smallReserved, big}, moves)
}

func TestTotals(t *testing.T) {
	productID := uuid.New()
	moves := []*StockMove{
		newConfirmedMove(t, productID, 42, 0),
		newConfirmedMove(t, productID, 22, 11),
	}

	assert.True(t, qty(64).Equal(TotalRequested(moves)))
	assert.True(t, qty(53).Equal(TotalRemovable(moves)))
	assert.True(t, decimal.Zero.Equal(TotalRemovable(nil)))
}

// ============================================
// MovementReducer
// ============================================

func TestMovementReducer_Plan(t *testing.T) {
	reducer := NewMovementReducer()
	productID := uuid.New()

	t.Run("does not mutate moves", func(t *testing.T) {
		m1 := newConfirmedMove(t, productID, 42, 0)
		m2 := newConfirmedMove(t, productID, 22, 0)

		plan, err := reducer.Plan([]*StockMove{m1, m2}, qty(30), unitRounding)
		require.NoError(t, err)

		assert.Equal(t, []string{"42", "22"}, requested(m1, m2))
		require.Len(t, plan.Steps, 2)
		assert.Same(t, m2, plan.Steps[0].Move)
		assert.True(t, qty(22).Equal(plan.Steps[0].Quantity))
		assert.Same(t, m1, plan.Steps[1].Move)
		assert.True(t, qty(8).Equal(plan.Steps[1].Quantity))
		assert.True(t, qty(30).Equal(plan.Removed()))
	})

	t.Run("stops once nothing remains", func(t *testing.T) {
		m1 := newConfirmedMove(t, productID, 42, 0)
		m2 := newConfirmedMove(t, productID, 22, 0)

		plan, err := reducer.Plan([]*StockMove{m1, m2}, qty(5), unitRounding)
		require.NoError(t, err)
		require.Len(t, plan.Steps, 1)
		assert.Same(t, m2, plan.Steps[0].Move)
	})

	t.Run("rejects more than removable without touching moves", func(t *testing.T) {
		m1 := newConfirmedMove(t, productID, 42, 0)
		m2 := newConfirmedMove(t, productID, 22, 11)

		_, err := reducer.Plan([]*StockMove{m1, m2}, qty(54), unitRounding)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientRemovable)

		var insufficient *InsufficientRemovableError
		require.ErrorAs(t, err, &insufficient)
		assert.True(t, qty(53).Equal(insufficient.MaxRemovable))
		assert.Contains(t, insufficient.Error(), "Max removable quantity 53.")
		assert.Equal(t, []string{"22", "42"}, requested(m2, m1))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		m1 := newConfirmedMove(t, productID, 42, 0)
		_, err := reducer.Plan([]*StockMove{m1}, qty(-1), unitRounding)
		assert.Error(t, err)
	})

	t.Run("rejects final moves", func(t *testing.T) {
		m1 := newConfirmedMove(t, productID, 42, 0)
		require.NoError(t, m1.Cancel())
		_, err := reducer.Plan([]*StockMove{m1}, qty(1), unitRounding)
		assert.Error(t, err)
	})

	t.Run("zero removal on empty set is allowed", func(t *testing.T) {
		plan, err := reducer.Plan(nil, decimal.Zero, unitRounding)
		require.NoError(t, err)
		assert.Empty(t, plan.Steps)
	})
}

func TestMovementReducer_Scenarios(t *testing.T) {
	reducer := NewMovementReducer()
	productID := uuid.New()

	t.Run("single move decreased", func(t *testing.T) {
		m := newConfirmedMove(t, productID, 42, 0)

		_, err := reducer.Reduce([]*StockMove{m}, qty(12), unitRounding)
		require.NoError(t, err)

		assert.True(t, qty(30).Equal(m.RequestedQuantity))
		assert.Equal(t, MoveStateConfirmed, m.State)
	})

	t.Run("single move decreased to zero is cancelled", func(t *testing.T) {
		m := newConfirmedMove(t, productID, 42, 0)

		_, err := reducer.Reduce([]*StockMove{m}, qty(42), unitRounding)
		require.NoError(t, err)

		assert.True(t, m.RequestedQuantity.IsZero())
		assert.Equal(t, MoveStateCancelled, m.State)
		assert.NotNil(t, m.CancelledAt)
	})

	t.Run("split moves reduce smallest first", func(t *testing.T) {
		m1 := newConfirmedMove(t, productID, 42, 0)
		m2 := newConfirmedMove(t, productID, 22, 0)

		_, err := reducer.Reduce([]*StockMove{m1, m2}, qty(11), unitRounding)
		require.NoError(t, err)
		assert.Equal(t, []string{"42", "11"}, requested(m1, m2))

		_, err = reducer.Reduce([]*StockMove{m1, m2}, qty(11), unitRounding)
		require.NoError(t, err)
		assert.Equal(t, []string{"42", "0"}, requested(m1, m2))
		assert.Equal(t, MoveStateConfirmed, m1.State)
		assert.Equal(t, MoveStateCancelled, m2.State)
	})

	t.Run("fulfilled quantity is a floor", func(t *testing.T) {
		m1 := newConfirmedMove(t, productID, 42, 0)
		m2 := newConfirmedMove(t, productID, 22, 11)

		_, err := reducer.Reduce([]*StockMove{m1, m2}, qty(4), unitRounding)
		require.NoError(t, err)
		assert.Equal(t, []string{"42", "18"}, requested(m1, m2))

		_, err = reducer.Reduce([]*StockMove{m1, m2}, qty(10), unitRounding)
		require.NoError(t, err)
		assert.Equal(t, []string{"39", "11"}, requested(m1, m2))

		_, err = reducer.Reduce([]*StockMove{m1, m2}, qty(45), unitRounding)
		assert.ErrorIs(t, err, ErrInsufficientRemovable)
		assert.Equal(t, []string{"39", "11"}, requested(m1, m2))

		_, err = reducer.Reduce([]*StockMove{m1, m2}, qty(39), unitRounding)
		require.NoError(t, err)
		assert.True(t, m1.RequestedQuantity.IsZero())
		assert.Equal(t, MoveStateCancelled, m1.State)
		assert.True(t, qty(11).Equal(m2.RequestedQuantity))
		assert.Equal(t, MoveStateConfirmed, m2.State)
	})

	t.Run("residue below rounding cancels the move", func(t *testing.T) {
		m := newConfirmedMove(t, productID, 1.004, 0)

		_, err := reducer.Reduce([]*StockMove{m}, qty(1), unitRounding)
		require.NoError(t, err)
		assert.Equal(t, MoveStateCancelled, m.State)
	})
}

// TestMovementReducer_Properties checks the sum and floor properties over a
// range of reductions applied to fresh move sets.
func TestMovementReducer_Properties(t *testing.T) {
	reducer := NewMovementReducer()
	productID := uuid.New()

	for remove := 0; remove <= 60; remove++ {
		moves := []*StockMove{
			newConfirmedMove(t, productID, 42, 5),
			newConfirmedMove(t, productID, 22, 11),
			newConfirmedMove(t, productID, 7, 0),
		}
		before := TotalRequested(moves)
		removable := TotalRemovable(moves)
		toRemove := qty(float64(remove))

		_, err := reducer.Reduce(moves, toRemove, unitRounding)
		if toRemove.GreaterThan(removable) {
			require.ErrorIs(t, err, ErrInsufficientRemovable)
			assert.True(t, before.Equal(TotalRequested(moves)))
			continue
		}
		require.NoError(t, err)
		assert.True(t, before.Sub(toRemove).Equal(TotalRequested(moves)), "remove %d", remove)
		for _, m := range moves {
			assert.True(t, m.RequestedQuantity.GreaterThanOrEqual(m.FulfilledQuantity))
			if m.State == MoveStateCancelled {
				assert.True(t, m.RequestedQuantity.IsZero())
			}
		}
	}
}
