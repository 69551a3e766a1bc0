package handler

import (
	inventoryapp "github.com/erp/purchase/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockMoveHandler handles stock move endpoints
type StockMoveHandler struct {
	BaseHandler
	moveService *inventoryapp.StockMoveService
}

// NewStockMoveHandler creates a new StockMoveHandler
func NewStockMoveHandler(moveService *inventoryapp.StockMoveService) *StockMoveHandler {
	return &StockMoveHandler{moveService: moveService}
}

// GetByID returns one stock move
func (h *StockMoveHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	moveID, ok := h.uuidParam(c, "id", "stock move")
	if !ok {
		return
	}

	move, err := h.moveService.GetByID(c.Request.Context(), tenantID, moveID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, move)
}

// ListByPurchaseLine lists the moves linked to ?purchase_line_id=
func (h *StockMoveHandler) ListByPurchaseLine(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	raw := c.Query("purchase_line_id")
	if raw == "" {
		h.BadRequest(c, "purchase_line_id is required")
		return
	}
	lineID, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid purchase line ID format")
		return
	}

	moves, err := h.moveService.ListByPurchaseLine(c.Request.Context(), tenantID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, moves, len(moves))
}

// RecordFulfilled records the quantity already handled on a move
func (h *StockMoveHandler) RecordFulfilled(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	moveID, ok := h.uuidParam(c, "id", "stock move")
	if !ok {
		return
	}
	var req inventoryapp.RecordFulfilledRequest
	if !h.bindJSON(c, &req) {
		return
	}

	move, err := h.moveService.RecordFulfilled(c.Request.Context(), tenantID, moveID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, move)
}

// Split moves part of the open quantity of a move into a new one
func (h *StockMoveHandler) Split(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	moveID, ok := h.uuidParam(c, "id", "stock move")
	if !ok {
		return
	}
	var req inventoryapp.SplitStockMoveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.moveService.Split(c.Request.Context(), tenantID, moveID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
