package procurement

import (
	"time"

	"github.com/erp/purchase/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProcurementInput is one need to turn into purchase requests
type ProcurementInput struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	ProductName  string          `json:"product_name" binding:"max=200"`
	Quantity     decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	Unit         string          `json:"unit" binding:"max=20"`
	Origin       string          `json:"origin" binding:"max=200"`
	DateRequired *time.Time      `json:"date_required"`
	GroupID      *uuid.UUID      `json:"group_id"`
}

// RuleInput carries the stock rule settings. GroupByDate defaults to the
// service configuration when omitted.
type RuleInput struct {
	GroupByDate  *bool      `json:"group_by_date"`
	Propagation  string     `json:"propagation" binding:"omitempty,oneof=none fixed propagate"`
	FixedGroupID *uuid.UUID `json:"fixed_group_id"`
}

// ProcureRequest runs a batch of procurements under one rule
type ProcureRequest struct {
	Procurements []ProcurementInput `json:"procurements" binding:"required,min=1,dive"`
	Rule         RuleInput          `json:"rule"`
}

func (in ProcurementInput) toDomain() procurement.Procurement {
	p := procurement.Procurement{
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		UnitCode:    in.Unit,
		Origin:      in.Origin,
		GroupID:     in.GroupID,
	}
	if in.DateRequired != nil {
		p.DateRequired = *in.DateRequired
	}
	return p
}

// PurchaseRequestResponse represents a purchase request in API responses
type PurchaseRequestResponse struct {
	ID        uuid.UUID                     `json:"id"`
	TenantID  uuid.UUID                     `json:"tenant_id"`
	Origin    string                        `json:"origin"`
	DateStart time.Time                     `json:"date_start"`
	GroupID   *uuid.UUID                    `json:"group_id,omitempty"`
	State     string                        `json:"state"`
	Lines     []PurchaseRequestLineResponse `json:"lines"`
	CreatedAt time.Time                     `json:"created_at"`
	UpdatedAt time.Time                     `json:"updated_at"`
	Version   int                           `json:"version"`
}

// PurchaseRequestLineResponse represents a purchase request line
type PurchaseRequestLineResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	DateRequired  time.Time       `json:"date_required"`
	PurchaseState string          `json:"purchase_state,omitempty"`
}

// CreateRequisitionRequest creates a call for tenders
type CreateRequisitionRequest struct {
	Reference  string                 `json:"reference" binding:"required,min=1,max=50"`
	SupplierID *uuid.UUID             `json:"supplier_id"`
	Lines      []RequisitionLineInput `json:"lines" binding:"dive"`
}

// RequisitionLineInput is one product of a requisition
type RequisitionLineInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"decimal_gte0"`
	Description string          `json:"description"`
}

// RequisitionResponse represents a requisition in API responses
type RequisitionResponse struct {
	ID         uuid.UUID                 `json:"id"`
	Reference  string                    `json:"reference"`
	SupplierID *uuid.UUID                `json:"supplier_id,omitempty"`
	Lines      []RequisitionLineResponse `json:"lines"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// RequisitionLineResponse represents a requisition line
type RequisitionLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Description string          `json:"description"`
}

// ToPurchaseRequestResponse converts a domain PurchaseRequest to response DTO
func ToPurchaseRequestResponse(r *procurement.PurchaseRequest) PurchaseRequestResponse {
	lines := make([]PurchaseRequestLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = PurchaseRequestLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			Quantity:      l.Quantity,
			Unit:          l.UnitCode,
			DateRequired:  l.DateRequired,
			PurchaseState: l.PurchaseState,
		}
	}
	return PurchaseRequestResponse{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Origin:    r.Origin,
		DateStart: r.DateStart,
		GroupID:   r.GroupID,
		State:     string(r.State),
		Lines:     lines,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}

// ToRequisitionResponse converts a domain Requisition to response DTO
func ToRequisitionResponse(r *procurement.Requisition) RequisitionResponse {
	lines := make([]RequisitionLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = RequisitionLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			Description: l.Description,
		}
	}
	return RequisitionResponse{
		ID:         r.ID,
		Reference:  r.Reference,
		SupplierID: r.SupplierID,
		Lines:      lines,
		CreatedAt:  r.CreatedAt,
	}
}

// SupplierInfoRequest records what a vendor calls one of our products
type SupplierInfoRequest struct {
	SupplierID  uuid.UUID `json:"supplier_id" binding:"required"`
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	ProductCode string    `json:"product_code" binding:"max=50"`
	ProductName string    `json:"product_name" binding:"max=200"`
}

// SupplierInfoResponse represents vendor product data in API responses
type SupplierInfoResponse struct {
	SupplierID  uuid.UUID `json:"supplier_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductCode string    `json:"product_code,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
}

// ToSupplierInfoResponse converts a domain SupplierInfo to response DTO
func ToSupplierInfoResponse(s procurement.SupplierInfo) SupplierInfoResponse {
	return SupplierInfoResponse{
		SupplierID:  s.SupplierID,
		ProductID:   s.ProductID,
		ProductCode: s.ProductCode,
		ProductName: s.ProductName,
	}
}
