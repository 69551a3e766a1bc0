package trade

import (
	"context"
	"fmt"
	"sort"
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

// CheckResult is the outcome of a check run
type CheckResult string

const (
	CheckResultSuccess CheckResult = "success"
	CheckResultFailure CheckResult = "failure"
)

// Check flags select which checks run
const (
	CheckFlagPreConfirmRequired = "pre-confirm-required"
	CheckFlagAll                = "all"
)

// preConfirmFailurePrefix heads the message of a blocking check failure
const preConfirmFailurePrefix = "THESE CHECKS CANNOT BE SKIPPED.\n\n"

// CheckReport summarizes a check run
type CheckReport struct {
	Counter int
	Result  CheckResult
	Message string
}

// Succeeded reports whether every check passed
func (r CheckReport) Succeeded() bool {
	return r.Result == CheckResultSuccess
}

// receiptCheck inspects a manual receipt and returns a message on failure
type receiptCheck struct {
	name string
	run  func(rc *receiptCheckContext) (string, bool)
}

var (
	checkLinesConsistency  = receiptCheck{name: "lines_consistency", run: linesConsistency}
	checkProductQuantities = receiptCheck{name: "product_quantities", run: productQuantities}
)

// manualReceiptChecks groups the checks by flag
var manualReceiptChecks = map[string][]receiptCheck{
	CheckFlagPreConfirmRequired: {checkLinesConsistency},
	CheckFlagAll:                {checkLinesConsistency, checkProductQuantities},
}

// checksFor returns the checks of a flag, falling back to every check
func checksFor(flag string) []receiptCheck {
	if checks, ok := manualReceiptChecks[flag]; ok {
		return checks
	}
	return manualReceiptChecks[CheckFlagAll]
}

// receiptCheckContext is what the checks see of a manual receipt
type receiptCheckContext struct {
	order *trade.PurchaseOrder
	lines []ManualReceiptLineInput
	// receivable holds, per purchase line, ordered minus what live moves already request
	receivable map[uuid.UUID]decimal.Decimal
}

// unitFactor defaults to one
func unitFactor(in ManualReceiptLineInput) decimal.Decimal {
	if in.UnitFactor == nil || !in.UnitFactor.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return *in.UnitFactor
}

func linesConsistency(rc *receiptCheckContext) (string, bool) {
	if len(rc.lines) == 0 {
		return "A manual receipt needs at least one line.", false
	}
	problems := make([]string, 0)
	for _, in := range rc.lines {
		line := rc.order.GetLine(in.PurchaseLineID)
		if line == nil {
			problems = append(problems, fmt.Sprintf("- Purchase line %s does not belong to order %s.", in.PurchaseLineID, rc.order.OrderNumber))
			continue
		}
		if in.Quantity.IsNegative() {
			problems = append(problems, fmt.Sprintf("- %s: quantity cannot be negative.", line.ProductName))
		}
	}
	if len(problems) > 0 {
		return "Inconsistent receipt lines:\n" + strings.Join(problems, "\n"), false
	}
	return "", true
}

type productTotals struct {
	name       string
	unit       trade.UnitOfMeasure
	toReceive  decimal.Decimal
	receivable decimal.Decimal
	lines      map[uuid.UUID]struct{}
}

func productQuantities(rc *receiptCheckContext) (string, bool) {
	byProduct := make(map[uuid.UUID]*productTotals)
	for _, in := range rc.lines {
		line := rc.order.GetLine(in.PurchaseLineID)
		if line == nil {
			continue
		}
		t, ok := byProduct[line.ProductID]
		if !ok {
			t = &productTotals{
				name:       line.ProductName,
				unit:       line.Unit,
				toReceive:  decimal.Zero,
				receivable: decimal.Zero,
				lines:      make(map[uuid.UUID]struct{}),
			}
			byProduct[line.ProductID] = t
		}
		t.toReceive = t.toReceive.Add(in.Quantity.Mul(unitFactor(in)))
		if _, seen := t.lines[line.ID]; !seen {
			t.lines[line.ID] = struct{}{}
			t.receivable = t.receivable.Add(rc.receivable[line.ID])
		}
	}

	exceeded := make([]*productTotals, 0)
	for _, t := range byProduct {
		if shared.CompareRounded(t.toReceive, t.receivable, t.unit.Rounding) > 0 {
			exceeded = append(exceeded, t)
		}
	}
	if len(exceeded) == 0 {
		return "", true
	}

	sort.Slice(exceeded, func(i, j int) bool { return exceeded[i].name < exceeded[j].name })
	var b strings.Builder
	b.WriteString("Qty to receive exceeds the receivable qty:")
	for _, t := range exceeded {
		fmt.Fprintf(&b, "\n- %s: to receive %s %s, receivable %s %s",
			t.name, t.toReceive.String(), t.unit.Code, t.receivable.String(), t.unit.Code)
	}
	return b.String(), false
}

// runChecks runs the checks of a flag and builds the report
func runChecks(flag string, rc *receiptCheckContext) CheckReport {
	checks := checksFor(flag)
	report := CheckReport{Result: CheckResultSuccess}
	messages := make([]string, 0)
	for _, c := range checks {
		report.Counter++
		if msg, ok := c.run(rc); !ok {
			report.Result = CheckResultFailure
			messages = append(messages, msg)
		}
	}
	if report.Result == CheckResultFailure {
		report.Message = strings.Join(messages, "\n\n")
		if flag == CheckFlagPreConfirmRequired {
			report.Message = preConfirmFailurePrefix + report.Message
		}
	}
	return report
}

// ManualReceiptService registers receipts on orders expecting manual receipts
type ManualReceiptService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewManualReceiptService creates a new ManualReceiptService
func NewManualReceiptService(txScope TransactionScope, logger *zap.Logger) *ManualReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManualReceiptService{txScope: txScope, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ManualReceiptService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Check runs every manual receipt check without creating anything
func (s *ManualReceiptService) Check(ctx context.Context, tenantID, orderID uuid.UUID, req ManualReceiptRequest) (*CheckReportResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "manual_receipt", "check")
	defer span.End()

	var report CheckReport
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		rc, err := s.loadContext(ctx, repos, tenantID, orderID, req)
		if err != nil {
			return err
		}
		report = runChecks(CheckFlagAll, rc)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	response := ToCheckReportResponse(report)
	return &response, nil
}

// Confirm runs the blocking checks and, when they pass, creates a receipt
// picking with one move per line. The picking is confirmed unless the request
// turns auto confirmation off.
func (s *ManualReceiptService) Confirm(ctx context.Context, tenantID, orderID uuid.UUID, req ManualReceiptRequest) (*ManualReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "manual_receipt", "confirm",
		telemetry.WithAttribute("order_id", orderID.String()),
	)
	defer span.End()

	var (
		report  CheckReport
		order   *trade.PurchaseOrder
		picking *inventory.Picking
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		rc, err := s.loadContext(ctx, repos, tenantID, orderID, req)
		if err != nil {
			return err
		}
		order = rc.order

		report = runChecks(CheckFlagPreConfirmRequired, rc)
		if !report.Succeeded() {
			return nil
		}

		scheduled := time.Now()
		if req.ScheduledDate != nil {
			scheduled = *req.ScheduledDate
		}
		picking, err = inventory.NewPicking(tenantID, order.ID, manualReceiptReference(order, scheduled), scheduled)
		if err != nil {
			return err
		}
		for _, in := range req.Lines {
			if !in.Quantity.IsPositive() {
				continue
			}
			line := order.GetLine(in.PurchaseLineID)
			move, err := inventory.NewStockMove(tenantID, line.ProductID, in.Quantity.Mul(unitFactor(in)), line.Unit.Code, scheduled)
			if err != nil {
				return err
			}
			move.LinkToPurchaseLine(line.ID)
			if err := picking.AddMove(move); err != nil {
				return err
			}
			line.LinkMove(move.ID)
		}
		if len(picking.Moves) == 0 {
			picking = nil
			return nil
		}
		if req.autoConfirm() {
			if err := picking.Confirm(); err != nil {
				return err
			}
		}
		if err := repos.PickingRepo().Save(ctx, picking); err != nil {
			return fmt.Errorf("save receipt picking: %w", err)
		}
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := &ManualReceiptResponse{Report: ToCheckReportResponse(report)}
	if picking != nil {
		aggregates := []shared.AggregateRoot{order, picking}
		for _, m := range picking.Moves {
			aggregates = append(aggregates, m)
		}
		publishEvents(ctx, s.eventPublisher, s.logger, aggregates...)

		p := ToPickingResponse(picking)
		response.Picking = &p
		s.logger.Info("Created manual receipt",
			zap.String("order_id", order.ID.String()),
			zap.String("picking_id", picking.ID.String()),
			zap.Int("moves", len(picking.Moves)),
		)
	}
	telemetry.SetOK(span)
	return response, nil
}

// loadContext loads the order and what each of its lines can still receive
func (s *ManualReceiptService) loadContext(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID, orderID uuid.UUID,
	req ManualReceiptRequest,
) (*receiptCheckContext, error) {
	order, err := repos.OrderRepo().FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != trade.OrderStatusConfirmed {
		return nil, shared.NewDomainError("INVALID_STATE", "Manual receipts require a confirmed order")
	}
	if order.ReceiptExpectation != trade.ReceiptExpectationManual {
		return nil, shared.NewDomainError("INVALID_RECEIPT_EXPECTATION", "Order does not expect manual receipts")
	}

	rc := &receiptCheckContext{
		order:      order,
		lines:      req.Lines,
		receivable: make(map[uuid.UUID]decimal.Decimal, len(order.Lines)),
	}
	for _, line := range order.Lines {
		planned := decimal.Zero
		if ids := line.LinkedMoveIDs(); len(ids) > 0 {
			moves, err := repos.MoveRepo().FindByIDs(ctx, tenantID, ids)
			if err != nil {
				return nil, fmt.Errorf("load linked moves: %w", err)
			}
			for _, m := range moves {
				if m.State != inventory.MoveStateCancelled {
					planned = planned.Add(m.RequestedQuantity)
				}
			}
		}
		rc.receivable[line.ID] = line.OrderedQuantity.Sub(planned)
	}
	return rc, nil
}

func manualReceiptReference(order *trade.PurchaseOrder, scheduled time.Time) string {
	return fmt.Sprintf("%s/IN/%s", order.OrderNumber, scheduled.Format("20060102150405"))
}
