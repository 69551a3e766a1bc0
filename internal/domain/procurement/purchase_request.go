package procurement

import (
	"strings"
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchaseRequest names the purchase request aggregate in events
const AggregateTypePurchaseRequest = "PurchaseRequest"

// RequestState represents the lifecycle state of a purchase request
type RequestState string

const (
	RequestStateDraft    RequestState = "DRAFT"
	RequestStateApproved RequestState = "APPROVED"
	RequestStateDone     RequestState = "DONE"
	RequestStateRejected RequestState = "REJECTED"
)

const originSeparator = ", "

// PurchaseRequest collects procurement needs before they become purchase orders
type PurchaseRequest struct {
	shared.BaseAggregateRoot
	Origin    string
	DateStart time.Time
	GroupID   *uuid.UUID
	State     RequestState
	Lines     []*PurchaseRequestLine
}

// PurchaseRequestLine is one requested product quantity.
// PurchaseState is empty until an RFQ or purchase order references the line.
type PurchaseRequestLine struct {
	ID            uuid.UUID
	RequestID     uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	Quantity      decimal.Decimal
	UnitCode      string
	DateRequired  time.Time
	PurchaseState string
}

// NewPurchaseRequest creates a draft purchase request
func NewPurchaseRequest(tenantID uuid.UUID, origin string, dateStart time.Time, groupID *uuid.UUID) *PurchaseRequest {
	return &PurchaseRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(tenantID),
		Origin:            origin,
		DateStart:         truncateToDate(dateStart),
		GroupID:           groupID,
		State:             RequestStateDraft,
		Lines:             make([]*PurchaseRequestLine, 0),
	}
}

// HasProduct reports whether any line requests the product
func (r *PurchaseRequest) HasProduct(productID uuid.UUID) bool {
	for _, l := range r.Lines {
		if l.ProductID == productID {
			return true
		}
	}
	return false
}

// Origins returns the individual origins recorded on the request
func (r *PurchaseRequest) Origins() []string {
	if r.Origin == "" {
		return nil
	}
	return strings.Split(r.Origin, originSeparator)
}

// AppendOrigin adds origin to the comma separated origin list unless already present
func (r *PurchaseRequest) AppendOrigin(origin string) {
	if origin == "" {
		return
	}
	for _, o := range r.Origins() {
		if o == origin {
			return
		}
	}
	if r.Origin == "" {
		r.Origin = origin
	} else {
		r.Origin = r.Origin + originSeparator + origin
	}
	r.Touch()
}

// AddProcurement records a need on the request. A line for the same product
// and required date that no purchase references yet absorbs the quantity;
// otherwise a new line is added. It returns the line and whether it was merged.
func (r *PurchaseRequest) AddProcurement(p Procurement) (*PurchaseRequestLine, bool, error) {
	if err := p.Validate(); err != nil {
		return nil, false, err
	}
	if r.State != RequestStateDraft {
		return nil, false, shared.NewDomainError("INVALID_STATE", "Only draft purchase requests accept new needs")
	}

	required := truncateToDate(p.DateRequired)
	for _, l := range r.Lines {
		if l.ProductID == p.ProductID && l.DateRequired.Equal(required) && l.PurchaseState == "" {
			l.Quantity = l.Quantity.Add(p.Quantity)
			r.Touch()
			return l, true, nil
		}
	}

	line := &PurchaseRequestLine{
		ID:           uuid.New(),
		RequestID:    r.ID,
		ProductID:    p.ProductID,
		ProductName:  p.ProductName,
		Quantity:     p.Quantity,
		UnitCode:     p.UnitCode,
		DateRequired: required,
	}
	r.Lines = append(r.Lines, line)
	r.Touch()
	return line, false, nil
}

// Approve approves a draft request
func (r *PurchaseRequest) Approve() error {
	if r.State != RequestStateDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft purchase requests can be approved")
	}
	r.State = RequestStateApproved
	r.Touch()
	return nil
}

func truncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
