package handler

import (
	tradeapp "github.com/erp/purchase/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService   *tradeapp.PurchaseOrderService
	receiptService *tradeapp.ManualReceiptService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *tradeapp.PurchaseOrderService, receiptService *tradeapp.ManualReceiptService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orderService:   orderService,
		receiptService: receiptService,
	}
}

// Create godoc
// @Summary      Create a draft purchase order
// @Tags         purchase-orders
// @Router       /trade/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req tradeapp.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID godoc
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Router       /trade/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Confirm godoc
// @Summary      Confirm a draft purchase order and plan its receipts
// @Tags         purchase-orders
// @Router       /trade/purchase-orders/{id}/confirm [post]
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.Confirm(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel godoc
// @Summary      Cancel a purchase order
// @Tags         purchase-orders
// @Router       /trade/purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}

	// The body is optional.
	var req tradeapp.CancelPurchaseOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateLine godoc
// @Summary      Write quantity, unit or price on a purchase line
// @Description  A lower quantity is reconciled against the moves linked to the line.
// @Tags         purchase-orders
// @Router       /trade/purchase-orders/{id}/lines/{line_id} [patch]
func (h *PurchaseOrderHandler) UpdateLine(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "line_id", "line")
	if !ok {
		return
	}
	var req tradeapp.UpdatePurchaseLineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.orderService.UpdateLine(c.Request.Context(), tenantID, orderID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CheckManualReceipt runs every manual receipt check without writing anything
func (h *PurchaseOrderHandler) CheckManualReceipt(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}
	var req tradeapp.ManualReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.receiptService.Check(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ConfirmManualReceipt creates the receipt picking when the blocking checks pass.
// A failed check is answered with 200 and the report; no picking is created.
func (h *PurchaseOrderHandler) ConfirmManualReceipt(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id", "order")
	if !ok {
		return
	}
	var req tradeapp.ManualReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.receiptService.Confirm(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Picking == nil {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}
