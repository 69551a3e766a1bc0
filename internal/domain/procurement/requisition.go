package procurement

import (
	"strings"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierInfo is what a vendor calls one of our products
type SupplierInfo struct {
	SupplierID  uuid.UUID
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
}

// DescribeRequisitionLine appends the vendor's "[code] name" to desc, taken
// from the first supplier info for the product that has a code or a name.
func DescribeRequisitionLine(desc string, productID uuid.UUID, sellers []SupplierInfo) string {
	for _, s := range sellers {
		if s.ProductID != productID || (s.ProductCode == "" && s.ProductName == "") {
			continue
		}
		var b strings.Builder
		b.WriteString(desc)
		if s.ProductCode != "" {
			b.WriteString("[" + s.ProductCode + "] ")
		}
		if s.ProductName != "" {
			b.WriteString(s.ProductName + "\n")
		}
		return b.String()
	}
	return desc
}

// Requisition is a call for tenders listing the products to source
type Requisition struct {
	shared.BaseAggregateRoot
	Reference  string
	SupplierID *uuid.UUID
	Lines      []*RequisitionLine
}

// RequisitionLine is one product of a requisition
type RequisitionLine struct {
	ID            uuid.UUID
	RequisitionID uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	Description   string
}

// NewRequisition creates an empty requisition
func NewRequisition(tenantID uuid.UUID, reference string, supplierID *uuid.UUID) (*Requisition, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Requisition reference cannot be empty")
	}
	return &Requisition{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(tenantID),
		Reference:         reference,
		SupplierID:        supplierID,
		Lines:             make([]*RequisitionLine, 0),
	}, nil
}

// AddLine adds a product line described with the vendor's code and name.
// When the requisition targets a supplier, only that supplier's infos are used.
func (r *Requisition) AddLine(productID uuid.UUID, quantity decimal.Decimal, description string, sellers []SupplierInfo) (*RequisitionLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if r.SupplierID != nil {
		filtered := make([]SupplierInfo, 0, len(sellers))
		for _, s := range sellers {
			if s.SupplierID == *r.SupplierID {
				filtered = append(filtered, s)
			}
		}
		sellers = filtered
	}

	line := &RequisitionLine{
		ID:            uuid.New(),
		RequisitionID: r.ID,
		ProductID:     productID,
		Quantity:      quantity,
		Description:   DescribeRequisitionLine(description, productID, sellers),
	}
	r.Lines = append(r.Lines, line)
	r.Touch()
	return line, nil
}
