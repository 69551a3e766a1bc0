package handler

import (
	procurementapp "github.com/erp/purchase/internal/application/procurement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProcurementHandler handles purchase request, requisition and supplier info endpoints
type ProcurementHandler struct {
	BaseHandler
	requestService     *procurementapp.PurchaseRequestService
	requisitionService *procurementapp.RequisitionService
}

// NewProcurementHandler creates a new ProcurementHandler
func NewProcurementHandler(
	requestService *procurementapp.PurchaseRequestService,
	requisitionService *procurementapp.RequisitionService,
) *ProcurementHandler {
	return &ProcurementHandler{
		requestService:     requestService,
		requisitionService: requisitionService,
	}
}

// Procure godoc
// @Summary      Group procurements into purchase requests
// @Tags         procurement
// @Router       /procurement/requests/procure [post]
func (h *ProcurementHandler) Procure(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req procurementapp.ProcureRequest
	if !h.bindJSON(c, &req) {
		return
	}

	requests, err := h.requestService.Procure(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, requests, len(requests))
}

// GetRequest returns one purchase request
func (h *ProcurementHandler) GetRequest(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "purchase request")
	if !ok {
		return
	}

	request, err := h.requestService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// CreateRequisition creates a requisition with described lines
func (h *ProcurementHandler) CreateRequisition(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req procurementapp.CreateRequisitionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	requisition, err := h.requisitionService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, requisition)
}

// GetRequisition returns one requisition
func (h *ProcurementHandler) GetRequisition(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id", "requisition")
	if !ok {
		return
	}

	requisition, err := h.requisitionService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requisition)
}

// RegisterSupplierInfo stores the vendor code and name of a product
func (h *ProcurementHandler) RegisterSupplierInfo(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req procurementapp.SupplierInfoRequest
	if !h.bindJSON(c, &req) {
		return
	}

	info, err := h.requisitionService.RegisterSupplierInfo(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}

// ListSupplierInfos lists the vendor data of ?product_id=
func (h *ProcurementHandler) ListSupplierInfos(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	infos, err := h.requisitionService.ListSupplierInfos(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, infos, len(infos))
}
