package models

import (
	"time"

	"github.com/erp/purchase/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseRequestModel is the persistence model for the PurchaseRequest aggregate root.
type PurchaseRequestModel struct {
	TenantAggregateModel
	Origin    string                     `gorm:"type:text"`
	DateStart time.Time                  `gorm:"not null;index"`
	GroupID   *uuid.UUID                 `gorm:"type:uuid;index"`
	State     procurement.RequestState   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Lines     []PurchaseRequestLineModel `gorm:"foreignKey:RequestID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseRequestModel) TableName() string {
	return "purchase_requests"
}

// ToDomain converts the persistence model to a domain PurchaseRequest entity.
func (m *PurchaseRequestModel) ToDomain() *procurement.PurchaseRequest {
	r := &procurement.PurchaseRequest{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Origin:            m.Origin,
		DateStart:         m.DateStart,
		GroupID:           m.GroupID,
		State:             m.State,
		Lines:             make([]*procurement.PurchaseRequestLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		r.Lines[i] = &procurement.PurchaseRequestLine{
			ID:            l.ID,
			RequestID:     l.RequestID,
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			Quantity:      l.Quantity,
			UnitCode:      l.UnitCode,
			DateRequired:  l.DateRequired,
			PurchaseState: l.PurchaseState,
		}
	}
	return r
}

// PurchaseRequestModelFromDomain creates a persistence model from a domain PurchaseRequest.
// Lines are stored separately and left empty.
func PurchaseRequestModelFromDomain(r *procurement.PurchaseRequest) *PurchaseRequestModel {
	m := &PurchaseRequestModel{
		Origin:    r.Origin,
		DateStart: r.DateStart,
		GroupID:   r.GroupID,
		State:     r.State,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// PurchaseRequestLineModel is the persistence model for one requested product quantity
type PurchaseRequestLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	RequestID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo        int             `gorm:"not null;default:0"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName   string          `gorm:"type:varchar(200)"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCode      string          `gorm:"type:varchar(20);not null"`
	DateRequired  time.Time       `gorm:"not null"`
	PurchaseState string          `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (PurchaseRequestLineModel) TableName() string {
	return "purchase_request_lines"
}

// PurchaseRequestLineModelFromDomain creates a persistence model for a request line
func PurchaseRequestLineModelFromDomain(l *procurement.PurchaseRequestLine, lineNo int) *PurchaseRequestLineModel {
	return &PurchaseRequestLineModel{
		ID:            l.ID,
		RequestID:     l.RequestID,
		LineNo:        lineNo,
		ProductID:     l.ProductID,
		ProductName:   l.ProductName,
		Quantity:      l.Quantity,
		UnitCode:      l.UnitCode,
		DateRequired:  l.DateRequired,
		PurchaseState: l.PurchaseState,
	}
}

// RequisitionModel is the persistence model for the Requisition aggregate root.
type RequisitionModel struct {
	TenantAggregateModel
	Reference  string                 `gorm:"type:varchar(100);not null"`
	SupplierID *uuid.UUID             `gorm:"type:uuid;index"`
	Lines      []RequisitionLineModel `gorm:"foreignKey:RequisitionID;references:ID"`
}

// TableName returns the table name for GORM
func (RequisitionModel) TableName() string {
	return "requisitions"
}

// ToDomain converts the persistence model to a domain Requisition entity.
func (m *RequisitionModel) ToDomain() *procurement.Requisition {
	r := &procurement.Requisition{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Reference:         m.Reference,
		SupplierID:        m.SupplierID,
		Lines:             make([]*procurement.RequisitionLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		r.Lines[i] = &procurement.RequisitionLine{
			ID:            l.ID,
			RequisitionID: l.RequisitionID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			Description:   l.Description,
		}
	}
	return r
}

// RequisitionModelFromDomain creates a persistence model from a domain Requisition.
// Lines are stored separately and left empty.
func RequisitionModelFromDomain(r *procurement.Requisition) *RequisitionModel {
	m := &RequisitionModel{
		Reference:  r.Reference,
		SupplierID: r.SupplierID,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// RequisitionLineModel is the persistence model for one requisition product
type RequisitionLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	RequisitionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo        int             `gorm:"not null;default:0"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description   string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RequisitionLineModel) TableName() string {
	return "requisition_lines"
}

// SupplierInfoModel stores a vendor's code and name for one of our products
type SupplierInfoModel struct {
	TenantID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	ProductCode string    `gorm:"type:varchar(50)"`
	ProductName string    `gorm:"type:varchar(200)"`
	Sequence    int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SupplierInfoModel) TableName() string {
	return "supplier_infos"
}

// ToDomain converts the persistence model to a domain SupplierInfo value.
func (m *SupplierInfoModel) ToDomain() procurement.SupplierInfo {
	return procurement.SupplierInfo{
		SupplierID:  m.SupplierID,
		ProductID:   m.ProductID,
		ProductCode: m.ProductCode,
		ProductName: m.ProductName,
	}
}
