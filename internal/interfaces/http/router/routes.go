package router

import (
	"github.com/erp/purchase/internal/interfaces/http/handler"
)

// Handlers are the endpoints served under /api/v1
type Handlers struct {
	PurchaseOrders *handler.PurchaseOrderHandler
	StockMoves     *handler.StockMoveHandler
	Procurement    *handler.ProcurementHandler
}

// TradeRoutes serves purchase orders, line writes and manual receipts
func TradeRoutes(h *handler.PurchaseOrderHandler) *DomainGroup {
	trade := NewDomainGroup("trade", "/trade")
	orders := trade.Group("purchase-orders", "/purchase-orders")
	orders.POST("", h.Create).
		GET("/:id", h.GetByID).
		POST("/:id/confirm", h.Confirm).
		POST("/:id/cancel", h.Cancel).
		PATCH("/:id/lines/:line_id", h.UpdateLine).
		POST("/:id/manual-receipts/check", h.CheckManualReceipt).
		POST("/:id/manual-receipts", h.ConfirmManualReceipt)
	return trade
}

// InventoryRoutes serves the stock moves linked to purchase lines
func InventoryRoutes(h *handler.StockMoveHandler) *DomainGroup {
	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.Group("stock-moves", "/stock-moves").
		GET("", h.ListByPurchaseLine).
		GET("/:id", h.GetByID).
		POST("/:id/fulfil", h.RecordFulfilled).
		POST("/:id/split", h.Split)
	return inventory
}

// ProcurementRoutes serves purchase requests, requisitions and vendor product data
func ProcurementRoutes(h *handler.ProcurementHandler) *DomainGroup {
	procurement := NewDomainGroup("procurement", "/procurement")
	procurement.Group("requests", "/requests").
		POST("/procure", h.Procure).
		GET("/:id", h.GetRequest)
	procurement.Group("requisitions", "/requisitions").
		POST("", h.CreateRequisition).
		GET("/:id", h.GetRequisition)
	procurement.Group("supplier-infos", "/supplier-infos").
		GET("", h.ListSupplierInfos).
		PUT("", h.RegisterSupplierInfo)
	return procurement
}

// Register mounts every domain group of h on r
func (h Handlers) Register(r *Router) *Router {
	return r.Register(
		TradeRoutes(h.PurchaseOrders),
		InventoryRoutes(h.StockMoves),
		ProcurementRoutes(h.Procurement),
	)
}
