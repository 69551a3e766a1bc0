package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/domain/trade"
	"github.com/erp/purchase/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo      trade.PurchaseOrderRepository
	txScope        TransactionScope
	propagation    *QuantityPropagationService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo trade.PurchaseOrderRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orderRepo:   orderRepo,
		txScope:     txScope,
		propagation: NewQuantityPropagationService(logger),
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetReconciliationMetrics sets the instruments used by line reconciliation
func (s *PurchaseOrderService) SetReconciliationMetrics(m *telemetry.ReconciliationMetrics) {
	s.propagation.SetMetrics(m)
}

// Create creates a new draft purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "create")
	defer span.End()

	expectation, err := trade.ParseReceiptExpectation(req.ReceiptExpectation)
	if err != nil {
		return nil, err
	}

	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = generateOrderNumber(time.Now())
	} else {
		existing, err := s.orderRepo.FindByOrderNumber(ctx, tenantID, orderNumber)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Order number already exists: "+orderNumber)
		}
	}

	order, err := trade.NewPurchaseOrder(tenantID, orderNumber, req.SupplierID, req.SupplierName, expectation)
	if err != nil {
		return nil, err
	}
	order.Remark = req.Remark

	for _, in := range req.Lines {
		rounding := decimal.Zero
		if in.UnitRounding != nil {
			rounding = *in.UnitRounding
		}
		line, err := order.AddLine(in.ProductID, in.ProductName, in.Quantity, trade.NewUnitOfMeasure(in.Unit, rounding), in.UnitPrice)
		if err != nil {
			return nil, err
		}
		line.Description = in.Description
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, order)

	telemetry.SetOK(span)
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Confirm confirms a draft order and plans its receipts according to its
// receipt expectation
func (s *PurchaseOrderService) Confirm(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "confirm",
		telemetry.WithAttribute("order_id", orderID.String()),
	)
	defer span.End()

	var (
		order   *trade.PurchaseOrder
		picking *inventory.Picking
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		planner, err := receiptPlannerFor(order.ReceiptExpectation)
		if err != nil {
			return err
		}
		if err := order.Confirm(); err != nil {
			return err
		}
		picking, err = planner.PlanReceipts(ctx, repos, order)
		if err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	aggregates := []shared.AggregateRoot{order}
	if picking != nil {
		aggregates = append(aggregates, picking)
		for _, m := range picking.Moves {
			aggregates = append(aggregates, m)
		}
	}
	publishEvents(ctx, s.eventPublisher, s.logger, aggregates...)

	telemetry.SetOK(span)
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Cancel cancels an order and every open move linked to its lines
func (s *PurchaseOrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "cancel",
		telemetry.WithAttribute("order_id", orderID.String()),
	)
	defer span.End()

	var (
		order     *trade.PurchaseOrder
		cancelled []*inventory.StockMove
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := order.Cancel(req.Reason); err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0)
		for _, l := range order.Lines {
			ids = append(ids, l.LinkedMoveIDs()...)
		}
		if len(ids) > 0 {
			moves, err := repos.MoveRepo().FindByIDs(ctx, tenantID, ids)
			if err != nil {
				return fmt.Errorf("load linked moves: %w", err)
			}
			for _, m := range moves {
				if m.State.IsFinal() {
					continue
				}
				if err := m.Cancel(); err != nil {
					return err
				}
				cancelled = append(cancelled, m)
			}
			if len(cancelled) > 0 {
				if err := repos.MoveRepo().SaveBatch(ctx, cancelled); err != nil {
					return fmt.Errorf("save cancelled moves: %w", err)
				}
			}
		}
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	aggregates := []shared.AggregateRoot{order}
	for _, m := range cancelled {
		aggregates = append(aggregates, m)
	}
	publishEvents(ctx, s.eventPublisher, s.logger, aggregates...)

	telemetry.SetOK(span)
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// UpdateLine writes fields on a purchase line. When the write lowers the
// quantity of a confirmed line, the linked stock moves are reduced in the same
// transaction; if they cannot absorb the decrease nothing is stored.
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID, req UpdatePurchaseLineRequest) (*UpdatePurchaseLineResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "update_line",
		telemetry.WithAttribute("order_id", orderID.String()),
		telemetry.WithAttribute("line_id", lineID.String()),
	)
	defer span.End()

	var (
		order  *trade.PurchaseOrder
		result *PropagationResult
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		line := order.GetLine(lineID)
		if line == nil {
			return shared.NewDomainError("LINE_NOT_FOUND", "Purchase line not found")
		}

		change, err := order.UpdateLine(lineID, req.toLineUpdate(line.Unit))
		if err != nil {
			return err
		}

		if trade.NeedsReconciliation(change, line.State) {
			result, err = s.propagation.PropagateLine(ctx, repos.MoveRepo(), tenantID, line)
			if err != nil {
				return err
			}
		}
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, inventory.ErrInsufficientRemovable) {
			s.logger.Info("Rejected purchase line decrease",
				zap.String("order_id", orderID.String()),
				zap.String("line_id", lineID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	aggregates := []shared.AggregateRoot{order}
	if result != nil {
		for _, m := range result.Moves {
			aggregates = append(aggregates, m)
		}
	}
	publishEvents(ctx, s.eventPublisher, s.logger, aggregates...)

	telemetry.SetOK(span)
	return &UpdatePurchaseLineResponse{
		Order:          ToPurchaseOrderResponse(order),
		Reconciliation: ToReconciliationResponse(result),
	}, nil
}

func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("PO-%s-%s", now.Format("20060102"), suffix)
}
