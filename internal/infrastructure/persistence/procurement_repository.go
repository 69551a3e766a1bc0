package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/purchase/internal/domain/procurement"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/infrastructure/persistence/models"
	"github.com/erp/purchase/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func orderedRequestLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// GormPurchaseRequestRepository implements PurchaseRequestRepository using GORM
type GormPurchaseRequestRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRequestRepository creates a new GormPurchaseRequestRepository
func NewGormPurchaseRequestRepository(db *gorm.DB) *GormPurchaseRequestRepository {
	return &GormPurchaseRequestRepository{db: db}
}

// FindByID finds a purchase request with its lines
func (r *GormPurchaseRequestRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseRequest, error) {
	var model models.PurchaseRequestModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedRequestLines).
		Scopes(tenant.Scope(tenantID)).Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForGrouping returns draft requests of one grouping key that already
// request the product, oldest first
func (r *GormPurchaseRequestRepository) FindForGrouping(ctx context.Context, tenantID uuid.UUID, dateStart time.Time, groupID *uuid.UUID, productID uuid.UUID) ([]*procurement.PurchaseRequest, error) {
	withProduct := r.db.Model(&models.PurchaseRequestLineModel{}).
		Select("request_id").
		Where("product_id = ?", productID)

	query := r.db.WithContext(ctx).
		Preload("Lines", orderedRequestLines).
		Scopes(tenant.Scope(tenantID)).Where("state = ? AND date_start = ?", procurement.RequestStateDraft, dateStart.UTC()).
		Where("id IN (?)", withProduct)
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}

	var rows []models.PurchaseRequestModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	requests := make([]*procurement.PurchaseRequest, len(rows))
	for i := range rows {
		requests[i] = rows[i].ToDomain()
	}
	return requests, nil
}

// Save creates or updates a purchase request together with its lines
func (r *GormPurchaseRequestRepository) Save(ctx context.Context, request *procurement.PurchaseRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request.Touch()
		if err := tx.Omit("Lines").Save(models.PurchaseRequestModelFromDomain(request)).Error; err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(request.Lines))
		for i, l := range request.Lines {
			ids[i] = l.ID
		}
		stale := tx.Where("request_id = ?", request.ID)
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		if err := stale.Delete(&models.PurchaseRequestLineModel{}).Error; err != nil {
			return err
		}
		for i, l := range request.Lines {
			l.RequestID = request.ID
			if err := tx.Save(models.PurchaseRequestLineModelFromDomain(l, i)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormRequisitionRepository implements RequisitionRepository using GORM
type GormRequisitionRepository struct {
	db *gorm.DB
}

// NewGormRequisitionRepository creates a new GormRequisitionRepository
func NewGormRequisitionRepository(db *gorm.DB) *GormRequisitionRepository {
	return &GormRequisitionRepository{db: db}
}

// FindByID finds a requisition with its lines
func (r *GormRequisitionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*procurement.Requisition, error) {
	var model models.RequisitionModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedRequestLines).
		Scopes(tenant.Scope(tenantID)).Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates a requisition with its lines. Requisitions are not edited once created.
func (r *GormRequisitionRepository) Save(ctx context.Context, requisition *procurement.Requisition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(models.RequisitionModelFromDomain(requisition)).Error; err != nil {
			return err
		}
		if err := tx.Where("requisition_id = ?", requisition.ID).Delete(&models.RequisitionLineModel{}).Error; err != nil {
			return err
		}
		for i, l := range requisition.Lines {
			l.RequisitionID = requisition.ID
			line := models.RequisitionLineModel{
				ID:            l.ID,
				RequisitionID: l.RequisitionID,
				LineNo:        i,
				ProductID:     l.ProductID,
				Quantity:      l.Quantity,
				Description:   l.Description,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormSupplierInfoRepository implements SupplierInfoRepository using GORM
type GormSupplierInfoRepository struct {
	db *gorm.DB
}

// NewGormSupplierInfoRepository creates a new GormSupplierInfoRepository
func NewGormSupplierInfoRepository(db *gorm.DB) *GormSupplierInfoRepository {
	return &GormSupplierInfoRepository{db: db}
}

// FindByProduct returns the vendor infos of a product in registration order
func (r *GormSupplierInfoRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]procurement.SupplierInfo, error) {
	var rows []models.SupplierInfoModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).Where("product_id = ?", productID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	infos := make([]procurement.SupplierInfo, len(rows))
	for i := range rows {
		infos[i] = rows[i].ToDomain()
	}
	return infos, nil
}

// Save registers a vendor's code and name for a product. Saving an existing
// (supplier, product) pair updates it in place and keeps its position.
func (r *GormSupplierInfoRepository) Save(ctx context.Context, tenantID uuid.UUID, info procurement.SupplierInfo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SupplierInfoModel
		err := tx.Scopes(tenant.Scope(tenantID)).Where("supplier_id = ? AND product_id = ?", info.SupplierID, info.ProductID).
			First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Updates(map[string]any{
				"product_code": info.ProductCode,
				"product_name": info.ProductName,
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var count int64
		if err := tx.Model(&models.SupplierInfoModel{}).
			Scopes(tenant.Scope(tenantID)).Where("product_id = ?", info.ProductID).
			Count(&count).Error; err != nil {
			return err
		}
		return tx.Create(&models.SupplierInfoModel{
			TenantID:    tenantID,
			SupplierID:  info.SupplierID,
			ProductID:   info.ProductID,
			ProductCode: info.ProductCode,
			ProductName: info.ProductName,
			Sequence:    int(count),
		}).Error
	})
}

var (
	_ procurement.PurchaseRequestRepository = (*GormPurchaseRequestRepository)(nil)
	_ procurement.RequisitionRepository     = (*GormRequisitionRepository)(nil)
	_ procurement.SupplierInfoRepository    = (*GormSupplierInfoRepository)(nil)
)
