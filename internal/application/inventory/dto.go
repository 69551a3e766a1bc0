package inventory

import (
	"time"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordFulfilledRequest records the quantity already received on a move
type RecordFulfilledRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"decimal_gte0"`
	// Complete marks the move done once the quantity is recorded
	Complete bool `json:"complete"`
}

// SplitStockMoveRequest detaches part of a move into a new one
type SplitStockMoveRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
}

// StockMoveResponse represents a stock move in API responses
type StockMoveResponse struct {
	ID                uuid.UUID       `json:"id"`
	PurchaseLineID    *uuid.UUID      `json:"purchase_line_id,omitempty"`
	PickingID         *uuid.UUID      `json:"picking_id,omitempty"`
	ProductID         uuid.UUID       `json:"product_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	FulfilledQuantity decimal.Decimal `json:"fulfilled_quantity"`
	RemovableQuantity decimal.Decimal `json:"removable_quantity"`
	Unit              string          `json:"unit"`
	State             string          `json:"state"`
	ScheduledDate     time.Time       `json:"scheduled_date"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// SplitStockMoveResponse returns both halves of a split
type SplitStockMoveResponse struct {
	Original StockMoveResponse `json:"original"`
	Split    StockMoveResponse `json:"split"`
}

// ToStockMoveResponse converts a domain StockMove to response DTO
func ToStockMoveResponse(m *inventory.StockMove) StockMoveResponse {
	return StockMoveResponse{
		ID:                m.ID,
		PurchaseLineID:    m.PurchaseLineID,
		PickingID:         m.PickingID,
		ProductID:         m.ProductID,
		RequestedQuantity: m.RequestedQuantity,
		FulfilledQuantity: m.FulfilledQuantity,
		RemovableQuantity: m.RemovableQuantity(),
		Unit:              m.UnitCode,
		State:             m.State.String(),
		ScheduledDate:     m.ScheduledDate,
		CancelledAt:       m.CancelledAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Version:           m.Version,
	}
}

// ToStockMoveResponses converts a slice of moves
func ToStockMoveResponses(moves []*inventory.StockMove) []StockMoveResponse {
	out := make([]StockMoveResponse, len(moves))
	for i, m := range moves {
		out[i] = ToStockMoveResponse(m)
	}
	return out
}
