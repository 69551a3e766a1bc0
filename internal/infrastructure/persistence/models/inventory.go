package models

import (
	"time"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMoveModel is the persistence model for the StockMove aggregate root.
type StockMoveModel struct {
	TenantAggregateModel
	PurchaseLineID    *uuid.UUID          `gorm:"type:uuid;index"`
	PickingID         *uuid.UUID          `gorm:"type:uuid;index"`
	ProductID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	RequestedQuantity decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	FulfilledQuantity decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCode          string              `gorm:"type:varchar(20);not null"`
	State             inventory.MoveState `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ScheduledDate     time.Time           `gorm:"not null"`
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (StockMoveModel) TableName() string {
	return "stock_moves"
}

// ToDomain converts the persistence model to a domain StockMove entity.
func (m *StockMoveModel) ToDomain() *inventory.StockMove {
	return &inventory.StockMove{
		BaseAggregateRoot: m.ToAggregateRoot(),
		PurchaseLineID:    m.PurchaseLineID,
		PickingID:         m.PickingID,
		ProductID:         m.ProductID,
		RequestedQuantity: m.RequestedQuantity,
		FulfilledQuantity: m.FulfilledQuantity,
		UnitCode:          m.UnitCode,
		State:             m.State,
		ScheduledDate:     m.ScheduledDate,
		CancelledAt:       m.CancelledAt,
	}
}

// StockMoveModelFromDomain creates a persistence model from a domain StockMove.
func StockMoveModelFromDomain(s *inventory.StockMove) *StockMoveModel {
	m := &StockMoveModel{
		PurchaseLineID:    s.PurchaseLineID,
		PickingID:         s.PickingID,
		ProductID:         s.ProductID,
		RequestedQuantity: s.RequestedQuantity,
		FulfilledQuantity: s.FulfilledQuantity,
		UnitCode:          s.UnitCode,
		State:             s.State,
		ScheduledDate:     s.ScheduledDate,
		CancelledAt:       s.CancelledAt,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// PickingModel is the persistence model for the receipt Picking aggregate root.
type PickingModel struct {
	TenantAggregateModel
	PurchaseOrderID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Reference       string                 `gorm:"type:varchar(100);not null"`
	ScheduledDate   time.Time              `gorm:"not null"`
	State           inventory.PickingState `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Moves           []StockMoveModel       `gorm:"foreignKey:PickingID;references:ID"`
}

// TableName returns the table name for GORM
func (PickingModel) TableName() string {
	return "pickings"
}

// ToDomain converts the persistence model to a domain Picking entity.
func (m *PickingModel) ToDomain() *inventory.Picking {
	p := &inventory.Picking{
		BaseAggregateRoot: m.ToAggregateRoot(),
		PurchaseOrderID:   m.PurchaseOrderID,
		Reference:         m.Reference,
		ScheduledDate:     m.ScheduledDate,
		State:             m.State,
		Moves:             make([]*inventory.StockMove, len(m.Moves)),
	}
	for i := range m.Moves {
		p.Moves[i] = m.Moves[i].ToDomain()
	}
	return p
}

// PickingModelFromDomain creates a persistence model from a domain Picking.
// Moves are stored separately and left empty.
func PickingModelFromDomain(p *inventory.Picking) *PickingModel {
	m := &PickingModel{
		PurchaseOrderID: p.PurchaseOrderID,
		Reference:       p.Reference,
		ScheduledDate:   p.ScheduledDate,
		State:           p.State,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
