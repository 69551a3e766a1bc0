package procurement

import (
	"fmt"
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Procurement is a need for a product raised by a stock rule
type Procurement struct {
	ProductID    uuid.UUID
	ProductName  string
	Quantity     decimal.Decimal
	UnitCode     string
	Origin       string
	DateRequired time.Time
	GroupID      *uuid.UUID
}

// Validate checks the procurement is usable
func (p Procurement) Validate() error {
	if p.ProductID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !p.Quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Procurement quantity must be positive")
	}
	return nil
}

// Propagation defines which procurement group a generated request belongs to
type Propagation string

const (
	PropagationNone      Propagation = "none"
	PropagationFixed     Propagation = "fixed"
	PropagationPropagate Propagation = "propagate"
)

// Rule carries the stock rule settings relevant to purchase request creation
type Rule struct {
	// GroupByDate merges needs of the same day into one request per group
	GroupByDate  bool
	Propagation  Propagation
	FixedGroupID *uuid.UUID
}

// GroupFor resolves the group a request for p belongs to, or nil
func (r Rule) GroupFor(p Procurement) *uuid.UUID {
	switch r.Propagation {
	case PropagationFixed:
		return r.FixedGroupID
	case PropagationPropagate:
		return p.GroupID
	}
	return nil
}

// GroupingKey identifies the request that same-day needs are merged into.
// A nil GroupID matches requests of any group.
type GroupingKey struct {
	DateStart time.Time
	GroupID   *uuid.UUID
}

// KeyFor computes the grouping key of p for the given day
func (r Rule) KeyFor(p Procurement, today time.Time) GroupingKey {
	return GroupingKey{
		DateStart: truncateToDate(today),
		GroupID:   r.GroupFor(p),
	}
}

// String renders the key for caches and lock names
func (k GroupingKey) String() string {
	group := "any"
	if k.GroupID != nil {
		group = k.GroupID.String()
	}
	return fmt.Sprintf("%s:%s", k.DateStart.Format("2006-01-02"), group)
}
