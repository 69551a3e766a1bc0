package models

import (
	"time"

	"github.com/erp/purchase/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kinds of line to move links
const (
	MoveLinkReceipt = "receipt"
	MoveLinkDest    = "dest"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	TenantAggregateModel
	OrderNumber        string                   `gorm:"type:varchar(50);not null;index"`
	SupplierID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	SupplierName       string                   `gorm:"type:varchar(200);not null"`
	Status             trade.OrderStatus        `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	ReceiptExpectation trade.ReceiptExpectation `gorm:"type:varchar(20);not null;default:'automatic'"`
	Remark             string                   `gorm:"type:text"`
	Lines              []PurchaseLineModel      `gorm:"foreignKey:OrderID;references:ID"`
	ConfirmedAt        *time.Time               `gorm:"index"`
	CancelledAt        *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	order := &trade.PurchaseOrder{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		OrderNumber:        m.OrderNumber,
		SupplierID:         m.SupplierID,
		SupplierName:       m.SupplierName,
		Status:             m.Status,
		ReceiptExpectation: m.ReceiptExpectation,
		Remark:             m.Remark,
		ConfirmedAt:        m.ConfirmedAt,
		CancelledAt:        m.CancelledAt,
		Lines:              make([]*trade.PurchaseLine, len(m.Lines)),
	}
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
// Lines are stored separately and left empty.
func (m *PurchaseOrderModel) FromDomain(o *trade.PurchaseOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.Status = o.Status
	m.ReceiptExpectation = o.ReceiptExpectation
	m.Remark = o.Remark
	m.ConfirmedAt = o.ConfirmedAt
	m.CancelledAt = o.CancelledAt
}

// PurchaseOrderModelFromDomain creates a persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseLineModel is the persistence model for the PurchaseLine entity.
type PurchaseLineModel struct {
	ID              uuid.UUID               `gorm:"type:uuid;primary_key"`
	OrderID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	LineNo          int                     `gorm:"not null;default:0"`
	ProductID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProductName     string                  `gorm:"type:varchar(200);not null"`
	Description     string                  `gorm:"type:text"`
	OrderedQuantity decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	UnitCode        string                  `gorm:"type:varchar(20);not null"`
	UnitRounding    decimal.Decimal         `gorm:"type:decimal(18,6);not null"`
	UnitPrice       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	State           trade.LineState         `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	MoveLinks       []PurchaseLineMoveModel `gorm:"foreignKey:LineID;references:ID"`
	CreatedAt       time.Time               `gorm:"not null"`
	UpdatedAt       time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseLineModel) TableName() string {
	return "purchase_lines"
}

// ToDomain converts the persistence model to a domain PurchaseLine entity.
func (m *PurchaseLineModel) ToDomain() *trade.PurchaseLine {
	line := &trade.PurchaseLine{
		ID:              m.ID,
		OrderID:         m.OrderID,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		Description:     m.Description,
		OrderedQuantity: m.OrderedQuantity,
		Unit:            trade.NewUnitOfMeasure(m.UnitCode, m.UnitRounding),
		UnitPrice:       m.UnitPrice,
		State:           m.State,
	}
	for _, link := range m.MoveLinks {
		switch link.Kind {
		case MoveLinkDest:
			line.DestMoveIDs = append(line.DestMoveIDs, link.MoveID)
		default:
			line.MoveIDs = append(line.MoveIDs, link.MoveID)
		}
	}
	return line
}

// PurchaseLineModelFromDomain creates a persistence model from a domain
// PurchaseLine. The move links are rebuilt from both id lists.
func PurchaseLineModelFromDomain(l *trade.PurchaseLine, lineNo int, now time.Time) *PurchaseLineModel {
	m := &PurchaseLineModel{
		ID:              l.ID,
		LineNo:          lineNo,
		OrderID:         l.OrderID,
		ProductID:       l.ProductID,
		ProductName:     l.ProductName,
		Description:     l.Description,
		OrderedQuantity: l.OrderedQuantity,
		UnitCode:        l.Unit.Code,
		UnitRounding:    l.Unit.Rounding,
		UnitPrice:       l.UnitPrice,
		State:           l.State,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i, id := range l.DestMoveIDs {
		m.MoveLinks = append(m.MoveLinks, PurchaseLineMoveModel{LineID: l.ID, MoveID: id, Kind: MoveLinkDest, Position: i})
	}
	for i, id := range l.MoveIDs {
		m.MoveLinks = append(m.MoveLinks, PurchaseLineMoveModel{LineID: l.ID, MoveID: id, Kind: MoveLinkReceipt, Position: i})
	}
	return m
}

// PurchaseLineMoveModel links a purchase line to a stock move it created or feeds
type PurchaseLineMoveModel struct {
	LineID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	MoveID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Kind     string    `gorm:"type:varchar(10);primaryKey"`
	Position int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseLineMoveModel) TableName() string {
	return "purchase_line_moves"
}
