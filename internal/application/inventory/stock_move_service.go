package inventory

import (
	"context"
	"fmt"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockMoveService handles stock move operations that happen outside the
// purchase order flow: receiving goods and splitting moves.
type StockMoveService struct {
	moveRepo       inventory.StockMoveRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockMoveService creates a new StockMoveService
func NewStockMoveService(moveRepo inventory.StockMoveRepository, txScope TransactionScope, logger *zap.Logger) *StockMoveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockMoveService{
		moveRepo: moveRepo,
		txScope:  txScope,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockMoveService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetByID retrieves a stock move
func (s *StockMoveService) GetByID(ctx context.Context, tenantID, moveID uuid.UUID) (*StockMoveResponse, error) {
	move, err := s.moveRepo.FindByID(ctx, tenantID, moveID)
	if err != nil {
		return nil, err
	}
	response := ToStockMoveResponse(move)
	return &response, nil
}

// ListByPurchaseLine lists the moves generated from a purchase line
func (s *StockMoveService) ListByPurchaseLine(ctx context.Context, tenantID, lineID uuid.UUID) ([]StockMoveResponse, error) {
	moves, err := s.moveRepo.FindByPurchaseLine(ctx, tenantID, lineID)
	if err != nil {
		return nil, err
	}
	return ToStockMoveResponses(moves), nil
}

// RecordFulfilled records the quantity received on a move, optionally
// completing it
func (s *StockMoveService) RecordFulfilled(ctx context.Context, tenantID, moveID uuid.UUID, req RecordFulfilledRequest) (*StockMoveResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_move", "record_fulfilled",
		telemetry.WithAttribute("move_id", moveID.String()),
	)
	defer span.End()

	var move *inventory.StockMove
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		move, err = repos.MoveRepo().FindByID(ctx, tenantID, moveID)
		if err != nil {
			return err
		}
		if err := move.RecordFulfilled(req.Quantity); err != nil {
			return err
		}
		if req.Complete {
			if err := move.Complete(); err != nil {
				return err
			}
		}
		return repos.MoveRepo().Save(ctx, move)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, move)

	telemetry.SetOK(span)
	response := ToStockMoveResponse(move)
	return &response, nil
}

// Split detaches quantity from a move into a new move. The new move is linked
// to the same purchase line so later reconciliations see it.
func (s *StockMoveService) Split(ctx context.Context, tenantID, moveID uuid.UUID, req SplitStockMoveRequest) (*SplitStockMoveResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_move", "split",
		telemetry.WithAttribute("move_id", moveID.String()),
	)
	defer span.End()

	var move, split *inventory.StockMove
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		move, err = repos.MoveRepo().FindByID(ctx, tenantID, moveID)
		if err != nil {
			return err
		}
		split, err = move.Split(req.Quantity)
		if err != nil {
			return err
		}
		if err := repos.MoveRepo().SaveBatch(ctx, []*inventory.StockMove{move, split}); err != nil {
			return fmt.Errorf("save split moves: %w", err)
		}

		if move.PurchaseLineID == nil {
			return nil
		}
		order, err := repos.OrderRepo().FindByLineID(ctx, tenantID, *move.PurchaseLineID)
		if err != nil {
			return err
		}
		line := order.GetLine(*move.PurchaseLineID)
		if line == nil {
			return shared.NewDomainError("LINE_NOT_FOUND", "Purchase line not found")
		}
		line.LinkMove(split.ID)
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, move, split)

	s.logger.Info("Split stock move",
		zap.String("move_id", move.ID.String()),
		zap.String("split_id", split.ID.String()),
		zap.String("quantity", req.Quantity.String()),
	)
	telemetry.SetOK(span)
	return &SplitStockMoveResponse{
		Original: ToStockMoveResponse(move),
		Split:    ToStockMoveResponse(split),
	}, nil
}

func (s *StockMoveService) publish(ctx context.Context, moves ...*inventory.StockMove) {
	for _, m := range moves {
		events := m.GetDomainEvents()
		m.ClearDomainEvents()
		if s.eventPublisher == nil || len(events) == 0 {
			continue
		}
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish stock move events",
				zap.String("move_id", m.ID.String()),
				zap.Error(err),
			)
		}
	}
}
