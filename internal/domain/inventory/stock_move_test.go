package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockMove(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()

	t.Run("creates draft move", func(t *testing.T) {
		m, err := NewStockMove(tenantID, productID, qty(10), "pcs", time.Time{})
		require.NoError(t, err)
		assert.Equal(t, MoveStateDraft, m.State)
		assert.Equal(t, tenantID, m.TenantID)
		assert.True(t, m.FulfilledQuantity.IsZero())
		assert.False(t, m.ScheduledDate.IsZero())
		assert.Equal(t, 1, m.GetVersion())
	})

	t.Run("rejects empty product", func(t *testing.T) {
		_, err := NewStockMove(tenantID, uuid.Nil, qty(10), "pcs", time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewStockMove(tenantID, productID, qty(-1), "pcs", time.Now())
		assert.Error(t, err)
	})
}

func TestMoveState(t *testing.T) {
	assert.True(t, MoveStateAssigned.IsValid())
	assert.False(t, MoveState("UNKNOWN").IsValid())
	assert.True(t, MoveStateDone.IsFinal())
	assert.True(t, MoveStateCancelled.IsFinal())
	assert.False(t, MoveStateConfirmed.IsFinal())
}

func TestStockMove_Lifecycle(t *testing.T) {
	productID := uuid.New()

	t.Run("confirm assign complete", func(t *testing.T) {
		m, err := NewStockMove(uuid.New(), productID, qty(5), "pcs", time.Now())
		require.NoError(t, err)
		require.NoError(t, m.Confirm())
		assert.Error(t, m.Confirm())
		require.NoError(t, m.Assign())
		require.NoError(t, m.Complete())
		assert.Equal(t, MoveStateDone, m.State)
		assert.Error(t, m.Cancel())
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		m := newConfirmedMove(t, productID, 5, 0)
		require.NoError(t, m.Cancel())
		require.NoError(t, m.Cancel())
		assert.Len(t, m.GetDomainEvents(), 1)
	})
}

func TestStockMove_RecordFulfilled(t *testing.T) {
	m := newConfirmedMove(t, uuid.New(), 22, 0)

	require.NoError(t, m.RecordFulfilled(qty(11)))
	assert.True(t, qty(11).Equal(m.FulfilledQuantity))

	assert.Error(t, m.RecordFulfilled(qty(10)), "fulfilled quantity cannot decrease")
	assert.Error(t, m.RecordFulfilled(qty(23)), "fulfilled quantity cannot exceed requested")
	require.NoError(t, m.RecordFulfilled(qty(22)))
	assert.True(t, m.RemovableQuantity().IsZero())
}

func TestStockMove_Reduce(t *testing.T) {
	productID := uuid.New()

	t.Run("reduces and records event", func(t *testing.T) {
		m := newConfirmedMove(t, productID, 42, 0)
		require.NoError(t, m.Reduce(qty(12), unitRounding))

		assert.True(t, qty(30).Equal(m.RequestedQuantity))
		require.Len(t, m.GetDomainEvents(), 1)
		event, ok := m.GetDomainEvents()[0].(*StockMoveReducedEvent)
		require.True(t, ok)
		assert.True(t, qty(42).Equal(event.PreviousQuantity))
		assert.True(t, qty(12).Equal(event.RemovedQuantity))
	})

	t.Run("cannot go below fulfilled", func(t *testing.T) {
		m := newConfirmedMove(t, productID, 22, 11)
		err := m.Reduce(qty(12), unitRounding)
		assert.ErrorIs(t, err, ErrInsufficientRemovable)
		assert.True(t, qty(22).Equal(m.RequestedQuantity))
	})

	t.Run("zero reduction keeps state", func(t *testing.T) {
		m := newConfirmedMove(t, productID, 11, 11)
		require.NoError(t, m.Reduce(decimal.Zero, unitRounding))
		assert.Equal(t, MoveStateConfirmed, m.State)
		assert.Empty(t, m.GetDomainEvents())
	})

	t.Run("reduced to zero is cancelled", func(t *testing.T) {
		m := newConfirmedMove(t, productID, 3, 0)
		require.NoError(t, m.Reduce(qty(3), unitRounding))
		assert.Equal(t, MoveStateCancelled, m.State)
		assert.Len(t, m.GetDomainEvents(), 2)
	})

	t.Run("final moves cannot be reduced", func(t *testing.T) {
		m := newConfirmedMove(t, productID, 3, 0)
		require.NoError(t, m.Complete())
		assert.Error(t, m.Reduce(qty(1), unitRounding))
	})
}

func TestStockMove_Split(t *testing.T) {
	lineID := uuid.New()
	m := newConfirmedMove(t, uuid.New(), 64, 0)
	m.LinkToPurchaseLine(lineID)

	split, err := m.Split(qty(22))
	require.NoError(t, err)

	assert.True(t, qty(42).Equal(m.RequestedQuantity))
	assert.True(t, qty(22).Equal(split.RequestedQuantity))
	assert.Equal(t, MoveStateConfirmed, split.State)
	assert.Equal(t, &lineID, split.PurchaseLineID)
	assert.NotEqual(t, m.ID, split.ID)

	_, err = m.Split(qty(42))
	assert.Error(t, err, "cannot split the whole move")
	_, err = m.Split(decimal.Zero)
	assert.Error(t, err)
}
