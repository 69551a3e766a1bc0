package trade

import (
	"time"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	OrderNumber        string                    `json:"order_number" binding:"omitempty,max=50"`
	SupplierID         uuid.UUID                 `json:"supplier_id" binding:"required"`
	SupplierName       string                    `json:"supplier_name" binding:"required,min=1,max=200"`
	ReceiptExpectation string                    `json:"receipt_expectation" binding:"omitempty,oneof=automatic manual"`
	Lines              []CreatePurchaseLineInput `json:"lines" binding:"dive"`
	Remark             string                    `json:"remark"`
}

// CreatePurchaseLineInput represents a line in the create order request
type CreatePurchaseLineInput struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	ProductName  string           `json:"product_name" binding:"required,min=1,max=200"`
	Description  string           `json:"description"`
	Quantity     decimal.Decimal  `json:"quantity" binding:"decimal_gt0"`
	Unit         string           `json:"unit" binding:"required,min=1,max=20"`
	UnitRounding *decimal.Decimal `json:"unit_rounding"`
	UnitPrice    decimal.Decimal  `json:"unit_price" binding:"decimal_gte0"`
}

// UpdatePurchaseLineRequest writes fields on a purchase line. Omitted fields are left as they are.
type UpdatePurchaseLineRequest struct {
	Quantity     *decimal.Decimal `json:"quantity" binding:"omitempty,decimal_gte0"`
	Unit         *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	UnitRounding *decimal.Decimal `json:"unit_rounding"`
	UnitPrice    *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gte0"`
	Description  *string          `json:"description"`
}

// toLineUpdate converts the request into the domain write, keeping the
// current unit rounding when only the code changes
func (r UpdatePurchaseLineRequest) toLineUpdate(current trade.UnitOfMeasure) trade.LineUpdate {
	upd := trade.LineUpdate{
		OrderedQuantity: r.Quantity,
		UnitPrice:       r.UnitPrice,
		Description:     r.Description,
	}
	if r.Unit != nil || r.UnitRounding != nil {
		unit := current
		if r.Unit != nil {
			unit.Code = *r.Unit
		}
		if r.UnitRounding != nil {
			unit.Rounding = *r.UnitRounding
		}
		upd.Unit = &unit
	}
	return upd
}

// CancelPurchaseOrderRequest represents a request to cancel a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                 uuid.UUID              `json:"id"`
	TenantID           uuid.UUID              `json:"tenant_id"`
	OrderNumber        string                 `json:"order_number"`
	SupplierID         uuid.UUID              `json:"supplier_id"`
	SupplierName       string                 `json:"supplier_name"`
	Status             string                 `json:"status"`
	ReceiptExpectation string                 `json:"receipt_expectation"`
	Lines              []PurchaseLineResponse `json:"lines"`
	TotalAmount        decimal.Decimal        `json:"total_amount"`
	Remark             string                 `json:"remark"`
	ConfirmedAt        *time.Time             `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Version            int                    `json:"version"`
}

// PurchaseLineResponse represents a purchase line in API responses
type PurchaseLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Description     string          `json:"description,omitempty"`
	OrderedQuantity decimal.Decimal `json:"ordered_quantity"`
	Unit            string          `json:"unit"`
	UnitRounding    decimal.Decimal `json:"unit_rounding"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Amount          decimal.Decimal `json:"amount"`
	State           string          `json:"state"`
	MoveIDs         []uuid.UUID     `json:"move_ids"`
	DestMoveIDs     []uuid.UUID     `json:"dest_move_ids"`
}

// ReconciliationResponse reports how the linked moves followed a line write
type ReconciliationResponse struct {
	PreviousQuantity decimal.Decimal     `json:"previous_quantity"`
	NewQuantity      decimal.Decimal     `json:"new_quantity"`
	Removed          decimal.Decimal     `json:"removed"`
	Moves            []StockMoveResponse `json:"moves"`
}

// UpdatePurchaseLineResponse is the result of a line write
type UpdatePurchaseLineResponse struct {
	Order          PurchaseOrderResponse   `json:"order"`
	Reconciliation *ReconciliationResponse `json:"reconciliation,omitempty"`
}

// StockMoveResponse represents a stock move in API responses
type StockMoveResponse struct {
	ID                uuid.UUID       `json:"id"`
	PurchaseLineID    *uuid.UUID      `json:"purchase_line_id,omitempty"`
	PickingID         *uuid.UUID      `json:"picking_id,omitempty"`
	ProductID         uuid.UUID       `json:"product_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	FulfilledQuantity decimal.Decimal `json:"fulfilled_quantity"`
	Unit              string          `json:"unit"`
	State             string          `json:"state"`
	ScheduledDate     time.Time       `json:"scheduled_date"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	Version           int             `json:"version"`
}

// PickingResponse represents a receipt picking in API responses
type PickingResponse struct {
	ID              uuid.UUID           `json:"id"`
	PurchaseOrderID uuid.UUID           `json:"purchase_order_id"`
	Reference       string              `json:"reference"`
	State           string              `json:"state"`
	ScheduledDate   time.Time           `json:"scheduled_date"`
	Moves           []StockMoveResponse `json:"moves"`
}

// ==================== Manual Receipt DTOs ====================

// ManualReceiptLineInput is one line of a manual receipt
type ManualReceiptLineInput struct {
	PurchaseLineID uuid.UUID        `json:"purchase_line_id" binding:"required"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitFactor     *decimal.Decimal `json:"unit_factor"`
}

// ManualReceiptRequest registers goods expected from a confirmed order
type ManualReceiptRequest struct {
	Lines         []ManualReceiptLineInput `json:"lines" binding:"dive"`
	ScheduledDate *time.Time               `json:"scheduled_date"`
	AutoConfirm   *bool                    `json:"auto_confirm"`
}

// autoConfirm defaults to true
func (r ManualReceiptRequest) autoConfirm() bool {
	return r.AutoConfirm == nil || *r.AutoConfirm
}

// CheckReportResponse represents the outcome of a manual receipt check run
type CheckReportResponse struct {
	Counter int    `json:"counter"`
	Result  string `json:"result"`
	Message string `json:"message,omitempty"`
}

// ManualReceiptResponse is returned once a manual receipt was created
type ManualReceiptResponse struct {
	Report  CheckReportResponse `json:"report"`
	Picking *PickingResponse    `json:"picking,omitempty"`
}

// ==================== Converters ====================

// ToPurchaseOrderResponse converts domain PurchaseOrder to response DTO
func ToPurchaseOrderResponse(order *trade.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseLineResponse, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = ToPurchaseLineResponse(l)
	}
	return PurchaseOrderResponse{
		ID:                 order.ID,
		TenantID:           order.TenantID,
		OrderNumber:        order.OrderNumber,
		SupplierID:         order.SupplierID,
		SupplierName:       order.SupplierName,
		Status:             string(order.Status),
		ReceiptExpectation: string(order.ReceiptExpectation),
		Lines:              lines,
		TotalAmount:        order.TotalAmount(),
		Remark:             order.Remark,
		ConfirmedAt:        order.ConfirmedAt,
		CancelledAt:        order.CancelledAt,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		Version:            order.Version,
	}
}

// ToPurchaseLineResponse converts a domain PurchaseLine to response DTO
func ToPurchaseLineResponse(line *trade.PurchaseLine) PurchaseLineResponse {
	return PurchaseLineResponse{
		ID:              line.ID,
		ProductID:       line.ProductID,
		ProductName:     line.ProductName,
		Description:     line.Description,
		OrderedQuantity: line.OrderedQuantity,
		Unit:            line.Unit.Code,
		UnitRounding:    line.Unit.Rounding,
		UnitPrice:       line.UnitPrice,
		Amount:          line.Amount(),
		State:           string(line.State),
		MoveIDs:         append([]uuid.UUID{}, line.MoveIDs...),
		DestMoveIDs:     append([]uuid.UUID{}, line.DestMoveIDs...),
	}
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
		Unit:              m.UnitCode,
		State:             m.State.String(),
		ScheduledDate:     m.ScheduledDate,
		CancelledAt:       m.CancelledAt,
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

// ToPickingResponse converts a domain Picking to response DTO
func ToPickingResponse(p *inventory.Picking) PickingResponse {
	return PickingResponse{
		ID:              p.ID,
		PurchaseOrderID: p.PurchaseOrderID,
		Reference:       p.Reference,
		State:           string(p.State),
		ScheduledDate:   p.ScheduledDate,
		Moves:           ToStockMoveResponses(p.Moves),
	}
}

// ToReconciliationResponse converts a propagation result, or returns nil when none ran
func ToReconciliationResponse(r *PropagationResult) *ReconciliationResponse {
	if r == nil {
		return nil
	}
	return &ReconciliationResponse{
		PreviousQuantity: r.PreviousQuantity,
		NewQuantity:      r.NewQuantity,
		Removed:          r.Removed,
		Moves:            ToStockMoveResponses(r.Moves),
	}
}

// ToCheckReportResponse converts a check report
func ToCheckReportResponse(r CheckReport) CheckReportResponse {
	return CheckReportResponse{
		Counter: r.Counter,
		Result:  string(r.Result),
		Message: r.Message,
	}
}
