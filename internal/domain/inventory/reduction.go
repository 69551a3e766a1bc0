package inventory

import (
	"sort"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SortForReduction orders moves by ascending requested quantity, then by
// ascending fulfilled quantity. The sort is stable so equal moves keep the
// order they were loaded in.
func SortForReduction(moves []*StockMove) {
	sort.SliceStable(moves, func(i, j int) bool {
		a, b := moves[i], moves[j]
		if c := a.RequestedQuantity.Cmp(b.RequestedQuantity); c != 0 {
			return c < 0
		}
		return a.FulfilledQuantity.LessThan(b.FulfilledQuantity)
	})
}

// TotalRequested sums the requested quantity of every move, whatever its state
func TotalRequested(moves []*StockMove) decimal.Decimal {
	total := decimal.Zero
	for _, m := range moves {
		total = total.Add(m.RequestedQuantity)
	}
	return total
}

// TotalRemovable sums requested minus fulfilled over the moves
func TotalRemovable(moves []*StockMove) decimal.Decimal {
	total := decimal.Zero
	for _, m := range moves {
		total = total.Add(m.RemovableQuantity())
	}
	return total
}

// ReductionStep is the quantity taken from a single move
type ReductionStep struct {
	Move     *StockMove
	Quantity decimal.Decimal
}

// ReductionPlan is the full greedy removal computed before any move is touched
type ReductionPlan struct {
	Steps    []ReductionStep
	Rounding decimal.Decimal
}

// Removed returns the total quantity the plan takes from the moves
func (p *ReductionPlan) Removed() decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.Steps {
		total = total.Add(s.Quantity)
	}
	return total
}

// Apply reduces every planned move, cancelling those that reach zero.
// It returns the moves that were visited.
func (p *ReductionPlan) Apply() ([]*StockMove, error) {
	touched := make([]*StockMove, 0, len(p.Steps))
	for _, s := range p.Steps {
		if err := s.Move.Reduce(s.Quantity, p.Rounding); err != nil {
			return nil, err
		}
		touched = append(touched, s.Move)
	}
	return touched, nil
}

// MovementReducer strips quantity from a set of eligible moves, smallest and
// least fulfilled first, never going below what was already fulfilled.
type MovementReducer struct{}

// NewMovementReducer creates a MovementReducer
func NewMovementReducer() *MovementReducer {
	return &MovementReducer{}
}

// Plan computes the reduction of qtyToRemove over moves, which must already be
// filtered to non-final moves of the right product. The moves are sorted in
// place. Nothing is mutated; an InsufficientRemovableError is returned when the
// moves cannot absorb the reduction.
func (r *MovementReducer) Plan(moves []*StockMove, qtyToRemove, rounding decimal.Decimal) (*ReductionPlan, error) {
	if qtyToRemove.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity to remove cannot be negative")
	}
	for _, m := range moves {
		if m.State.IsFinal() {
			return nil, shared.NewDomainError("INVALID_STATE", "Cannot reduce a "+m.State.String()+" move")
		}
	}

	SortForReduction(moves)

	removable := TotalRemovable(moves)
	if qtyToRemove.GreaterThan(removable) {
		return nil, NewInsufficientRemovableError(removable, qtyToRemove)
	}

	plan := &ReductionPlan{Rounding: rounding}
	remaining := qtyToRemove
	for _, m := range moves {
		if shared.IsZeroRounded(remaining, rounding) {
			break
		}
		take := decimal.Min(remaining, m.RemovableQuantity())
		remaining = remaining.Sub(take)
		plan.Steps = append(plan.Steps, ReductionStep{Move: m, Quantity: take})
	}
	return plan, nil
}

// Reduce plans and applies the reduction in one call
func (r *MovementReducer) Reduce(moves []*StockMove, qtyToRemove, rounding decimal.Decimal) ([]*StockMove, error) {
	plan, err := r.Plan(moves, qtyToRemove, rounding)
	if err != nil {
		return nil, err
	}
	return plan.Apply()
}
