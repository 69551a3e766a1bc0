package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/trade"
	"github.com/erp/purchase/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReductionRequest holds the parameters of a single line reconciliation
type ReductionRequest struct {
	ProductID      uuid.UUID
	Rounding       decimal.Decimal
	ExcludedStates []inventory.MoveState
}

// ReductionRequestFor builds the reduction parameters of a purchase line
func ReductionRequestFor(line *trade.PurchaseLine) ReductionRequest {
	return ReductionRequest{
		ProductID:      line.ProductID,
		Rounding:       line.Unit.Rounding,
		ExcludedStates: inventory.FinalMoveStates,
	}
}

// PropagationResult describes what a reconciliation did to the linked moves
type PropagationResult struct {
	LineID           uuid.UUID
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	Removed          decimal.Decimal
	Moves            []*inventory.StockMove
}

// Changed reports whether any move was touched
func (r *PropagationResult) Changed() bool {
	return len(r.Moves) > 0
}

// QuantityPropagationService brings the stock moves of a purchase line in
// line with a decreased ordered quantity. Increases are left alone.
type QuantityPropagationService struct {
	reducer *inventory.MovementReducer
	metrics *telemetry.ReconciliationMetrics
	logger  *zap.Logger
}

// NewQuantityPropagationService creates a new QuantityPropagationService
func NewQuantityPropagationService(logger *zap.Logger) *QuantityPropagationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuantityPropagationService{
		reducer: inventory.NewMovementReducer(),
		logger:  logger,
	}
}

// SetMetrics sets the reconciliation instruments
func (s *QuantityPropagationService) SetMetrics(m *telemetry.ReconciliationMetrics) {
	s.metrics = m
}

// PropagateLine reduces the linked moves of line by the difference between
// what they currently request and the line's ordered quantity. moveRepo must
// belong to the transaction that wrote the line.
func (s *QuantityPropagationService) PropagateLine(
	ctx context.Context,
	moveRepo inventory.StockMoveRepository,
	tenantID uuid.UUID,
	line *trade.PurchaseLine,
) (*PropagationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quantity_propagation", "propagate_line",
		telemetry.WithAttribute("line_id", line.ID.String()),
	)
	defer span.End()

	result := &PropagationResult{
		LineID:      line.ID,
		NewQuantity: line.OrderedQuantity,
		Removed:     decimal.Zero,
	}

	ids := line.LinkedMoveIDs()
	if len(ids) == 0 {
		result.PreviousQuantity = decimal.Zero
		return result, nil
	}

	linked, err := moveRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load linked moves: %w", err)
	}
	result.PreviousQuantity = inventory.TotalRequested(linked)

	if line.OrderedQuantity.GreaterThanOrEqual(result.PreviousQuantity) {
		s.metrics.RecordOutcome(ctx, telemetry.OutcomeNoop)
		return result, nil
	}
	qtyToRemove := result.PreviousQuantity.Sub(line.OrderedQuantity)

	req := ReductionRequestFor(line)
	moves, err := moveRepo.FindReducible(ctx, tenantID, ids, req.ProductID, req.ExcludedStates)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load reducible moves: %w", err)
	}

	plan, err := s.reducer.Plan(moves, qtyToRemove, req.Rounding)
	if err != nil {
		if errors.Is(err, inventory.ErrInsufficientRemovable) {
			s.metrics.RecordOutcome(ctx, telemetry.OutcomeInsufficient)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	touched, err := plan.Apply()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(touched) > 0 {
		if err := moveRepo.SaveBatch(ctx, touched); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("save reduced moves: %w", err)
		}
	}

	result.Removed = plan.Removed()
	result.Moves = touched
	s.metrics.RecordReduction(ctx, result.Removed.InexactFloat64(), len(touched))

	telemetry.SetAttributes(span,
		"qty_to_remove", qtyToRemove.String(),
		"moves_touched", len(touched),
	)
	telemetry.SetOK(span)
	s.logger.Info("Reconciled stock moves with purchase line",
		zap.String("line_id", line.ID.String()),
		zap.String("qty_to_remove", qtyToRemove.String()),
		zap.Int("moves_touched", len(touched)),
	)
	return result, nil
}
