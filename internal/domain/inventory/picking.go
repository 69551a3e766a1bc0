package inventory

import (
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypePicking names the picking aggregate in events
const AggregateTypePicking = "Picking"

// PickingState represents the lifecycle state of a receipt picking
type PickingState string

const (
	PickingStateDraft     PickingState = "DRAFT"
	PickingStateConfirmed PickingState = "CONFIRMED"
	PickingStateDone      PickingState = "DONE"
	PickingStateCancelled PickingState = "CANCELLED"
)

// Picking groups the receipt moves created for a purchase order in one go
type Picking struct {
	shared.BaseAggregateRoot
	PurchaseOrderID uuid.UUID
	Reference       string
	ScheduledDate   time.Time
	State           PickingState
	Moves           []*StockMove
}

// NewPicking creates a draft receipt picking for a purchase order
func NewPicking(tenantID, purchaseOrderID uuid.UUID, reference string, scheduled time.Time) (*Picking, error) {
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Purchase order ID cannot be empty")
	}
	if scheduled.IsZero() {
		scheduled = time.Now()
	}
	return &Picking{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(tenantID),
		PurchaseOrderID:   purchaseOrderID,
		Reference:         reference,
		ScheduledDate:     scheduled,
		State:             PickingStateDraft,
		Moves:             make([]*StockMove, 0),
	}, nil
}

// AddMove attaches a draft move to the picking
func (p *Picking) AddMove(m *StockMove) error {
	if p.State != PickingStateDraft {
		return shared.NewDomainError("INVALID_STATE", "Moves can only be added to a draft picking")
	}
	if m.TenantID != p.TenantID {
		return shared.NewDomainError("INVALID_TENANT", "Move belongs to another tenant")
	}
	m.PickingID = &p.ID
	m.ScheduledDate = p.ScheduledDate
	p.Moves = append(p.Moves, m)
	return nil
}

// Confirm confirms the picking and every draft move in it
func (p *Picking) Confirm() error {
	if p.State != PickingStateDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft pickings can be confirmed")
	}
	if len(p.Moves) == 0 {
		return shared.NewDomainError("EMPTY_PICKING", "Picking has no moves")
	}
	for _, m := range p.Moves {
		if m.State == MoveStateDraft {
			if err := m.Confirm(); err != nil {
				return err
			}
		}
	}
	p.State = PickingStateConfirmed
	p.AddDomainEvent(NewPickingConfirmedEvent(p))
	p.Touch()
	return nil
}
