package procurement

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/purchase/internal/domain/procurement"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/google/uuid"
)

// RequisitionService creates calls for tenders described with vendor data
type RequisitionService struct {
	requisitionRepo procurement.RequisitionRepository
	supplierRepo    procurement.SupplierInfoRepository
}

// NewRequisitionService creates a new RequisitionService
func NewRequisitionService(requisitionRepo procurement.RequisitionRepository, supplierRepo procurement.SupplierInfoRepository) *RequisitionService {
	return &RequisitionService{
		requisitionRepo: requisitionRepo,
		supplierRepo:    supplierRepo,
	}
}

// Create creates a requisition; each line description gets the vendor's
// code and name for the product appended
func (s *RequisitionService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRequisitionRequest) (*RequisitionResponse, error) {
	requisition, err := procurement.NewRequisition(tenantID, req.Reference, req.SupplierID)
	if err != nil {
		return nil, err
	}

	sellers := make(map[uuid.UUID][]procurement.SupplierInfo)
	for _, in := range req.Lines {
		infos, ok := sellers[in.ProductID]
		if !ok {
			infos, err = s.supplierRepo.FindByProduct(ctx, tenantID, in.ProductID)
			if err != nil {
				return nil, fmt.Errorf("load supplier infos: %w", err)
			}
			sellers[in.ProductID] = infos
		}
		if _, err := requisition.AddLine(in.ProductID, in.Quantity, in.Description, infos); err != nil {
			return nil, err
		}
	}

	if err := s.requisitionRepo.Save(ctx, requisition); err != nil {
		return nil, err
	}
	response := ToRequisitionResponse(requisition)
	return &response, nil
}

// GetByID retrieves a requisition
func (s *RequisitionService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*RequisitionResponse, error) {
	r, err := s.requisitionRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToRequisitionResponse(r)
	return &response, nil
}

// RegisterSupplierInfo creates or replaces the vendor data of a
// (supplier, product) pair. New pairs rank after the existing ones.
func (s *RequisitionService) RegisterSupplierInfo(ctx context.Context, tenantID uuid.UUID, req SupplierInfoRequest) (*SupplierInfoResponse, error) {
	if req.SupplierID == uuid.Nil || req.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier and product are required")
	}
	info := procurement.SupplierInfo{
		SupplierID:  req.SupplierID,
		ProductID:   req.ProductID,
		ProductCode: strings.TrimSpace(req.ProductCode),
		ProductName: strings.TrimSpace(req.ProductName),
	}
	if err := s.supplierRepo.Save(ctx, tenantID, info); err != nil {
		return nil, fmt.Errorf("save supplier info: %w", err)
	}
	response := ToSupplierInfoResponse(info)
	return &response, nil
}

// ListSupplierInfos returns the vendor data of a product in ranking order
func (s *RequisitionService) ListSupplierInfos(ctx context.Context, tenantID, productID uuid.UUID) ([]SupplierInfoResponse, error) {
	infos, err := s.supplierRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	out := make([]SupplierInfoResponse, len(infos))
	for i, info := range infos {
		out[i] = ToSupplierInfoResponse(info)
	}
	return out, nil
}
