package procurement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/erp/purchase/internal/domain/procurement"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultGroupingLockTTL bounds how long a grouping key stays locked
const DefaultGroupingLockTTL = 30 * time.Second

// PurchaseRequestServiceConfig holds the procurement settings
type PurchaseRequestServiceConfig struct {
	// GroupByDate is used when a rule does not say whether to group
	GroupByDate bool
	LockTTL     time.Duration
}

// PurchaseRequestService turns procurements into purchase requests,
// merging same-day needs when the rule asks for it
type PurchaseRequestService struct {
	requestRepo    procurement.PurchaseRequestRepository
	txScope        TransactionScope
	locker         shared.Locker
	cfg            PurchaseRequestServiceConfig
	now            func() time.Time
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseRequestService creates a new PurchaseRequestService
func NewPurchaseRequestService(
	requestRepo procurement.PurchaseRequestRepository,
	txScope TransactionScope,
	locker shared.Locker,
	cfg PurchaseRequestServiceConfig,
	logger *zap.Logger,
) *PurchaseRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultGroupingLockTTL
	}
	return &PurchaseRequestService{
		requestRepo: requestRepo,
		txScope:     txScope,
		locker:      locker,
		cfg:         cfg,
		now:         time.Now,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseRequestService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetByID retrieves a purchase request
func (s *PurchaseRequestService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseRequestResponse, error) {
	r, err := s.requestRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseRequestResponse(r)
	return &response, nil
}

// Procure records a batch of procurements. With date grouping every need is
// merged into the draft request of its (day, group) key that already asks
// for the product, creating one when none exists; without it every need gets
// a request of its own. Grouping keys are locked for the whole batch.
func (s *PurchaseRequestService) Procure(ctx context.Context, tenantID uuid.UUID, req ProcureRequest) ([]PurchaseRequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_request", "procure",
		telemetry.WithAttribute("procurements", len(req.Procurements)),
	)
	defer span.End()

	rule := s.ruleFor(req.Rule)
	today := s.now()

	procurements := make([]procurement.Procurement, len(req.Procurements))
	for i, in := range req.Procurements {
		procurements[i] = in.toDomain()
		if err := procurements[i].Validate(); err != nil {
			return nil, err
		}
	}

	if rule.GroupByDate {
		release, err := s.lockKeys(ctx, tenantID, rule, procurements, today)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		defer release()
	}

	touched := make([]*procurement.PurchaseRequest, 0)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		cache := make(map[string]*procurement.PurchaseRequest)
		seen := make(map[uuid.UUID]struct{})

		for _, p := range procurements {
			request, err := s.requestFor(ctx, repos, tenantID, rule, p, today, cache)
			if err != nil {
				return err
			}
			request.AppendOrigin(p.Origin)
			if _, _, err := request.AddProcurement(p); err != nil {
				return err
			}
			if _, ok := seen[request.ID]; !ok {
				seen[request.ID] = struct{}{}
				touched = append(touched, request)
			}
		}

		for _, r := range touched {
			if err := repos.RequestRepo().Save(ctx, r); err != nil {
				return fmt.Errorf("save purchase request: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	responses := make([]PurchaseRequestResponse, len(touched))
	for i, r := range touched {
		s.publish(ctx, r)
		responses[i] = ToPurchaseRequestResponse(r)
	}
	s.logger.Info("Procured purchase requests",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("procurements", len(procurements)),
		zap.Int("requests", len(touched)),
		zap.Bool("group_by_date", rule.GroupByDate),
	)
	telemetry.SetOK(span)
	return responses, nil
}

func (s *PurchaseRequestService) ruleFor(in RuleInput) procurement.Rule {
	rule := procurement.Rule{
		GroupByDate:  s.cfg.GroupByDate,
		Propagation:  procurement.PropagationNone,
		FixedGroupID: in.FixedGroupID,
	}
	if in.GroupByDate != nil {
		rule.GroupByDate = *in.GroupByDate
	}
	if in.Propagation != "" {
		rule.Propagation = procurement.Propagation(in.Propagation)
	}
	return rule
}

// requestFor finds or creates the request p belongs to. Requests created or
// found earlier in the batch are reused through cache.
func (s *PurchaseRequestService) requestFor(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	rule procurement.Rule,
	p procurement.Procurement,
	today time.Time,
	cache map[string]*procurement.PurchaseRequest,
) (*procurement.PurchaseRequest, error) {
	key := rule.KeyFor(p, today)
	if !rule.GroupByDate {
		return procurement.NewPurchaseRequest(tenantID, "", key.DateStart, key.GroupID), nil
	}

	cacheKey := key.String() + ":" + p.ProductID.String()
	if r, ok := cache[cacheKey]; ok {
		return r, nil
	}

	found, err := repos.RequestRepo().FindForGrouping(ctx, tenantID, key.DateStart, key.GroupID, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("find purchase request for %s: %w", key, err)
	}
	var r *procurement.PurchaseRequest
	if len(found) > 0 {
		r = found[0]
	} else {
		r = procurement.NewPurchaseRequest(tenantID, "", key.DateStart, key.GroupID)
	}
	cache[cacheKey] = r
	return r, nil
}

// lockKeys obtains the grouping locks of the batch in a stable order and
// returns a function releasing them
func (s *PurchaseRequestService) lockKeys(
	ctx context.Context,
	tenantID uuid.UUID,
	rule procurement.Rule,
	procurements []procurement.Procurement,
	today time.Time,
) (func(), error) {
	keys := make(map[string]struct{})
	for _, p := range procurements {
		keys[rule.KeyFor(p, today).String()] = struct{}{}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, fmt.Sprintf("purchase_request:%s:%s", tenantID, k))
	}
	sort.Strings(names)

	held := make([]shared.Lock, 0, len(names))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release grouping lock", zap.Error(err))
			}
		}
	}
	if s.locker == nil {
		return release, nil
	}
	for _, name := range names {
		l, err := s.locker.Obtain(ctx, name, s.cfg.LockTTL)
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, l)
	}
	return release, nil
}

func (s *PurchaseRequestService) publish(ctx context.Context, r *procurement.PurchaseRequest) {
	events := r.GetDomainEvents()
	r.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish purchase request events",
			zap.String("request_id", r.ID.String()),
			zap.Error(err),
		)
	}
}
