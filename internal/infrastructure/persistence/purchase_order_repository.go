package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/domain/trade"
	"github.com/erp/purchase/internal/infrastructure/persistence/models"
	"github.com/erp/purchase/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func (r *GormPurchaseOrderRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Lines.MoveLinks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID finds a purchase order with its lines within a tenant
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.withLines(ctx).
		Scopes(tenant.Scope(tenantID)).Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds a purchase order by order number for a tenant
func (r *GormPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.withLines(ctx).
		Scopes(tenant.Scope(tenantID)).Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLineID finds the purchase order owning a line
func (r *GormPurchaseOrderRepository) FindByLineID(ctx context.Context, tenantID, lineID uuid.UUID) (*trade.PurchaseOrder, error) {
	var line models.PurchaseLineModel
	if err := r.db.WithContext(ctx).
		Select("order_id").
		Where("id = ?", lineID).
		First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, tenantID, line.OrderID)
}

// Save creates or updates a purchase order together with its lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseOrderModelFromDomain(order)
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}
		return saveLines(tx, order)
	})
}

// SaveWithLock updates a purchase order only if its stored version still
// matches the loaded one, then bumps the version.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.PurchaseOrderModel
		if err := tx.Select("version").
			Scopes(tenant.Scope(order.TenantID)).Where("id = ?", order.ID).
			First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if current.Version != order.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		now := time.Now()
		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ? AND version = ?", order.ID, current.Version).
			Updates(map[string]any{
				"supplier_id":         order.SupplierID,
				"supplier_name":       order.SupplierName,
				"status":              order.Status,
				"receipt_expectation": order.ReceiptExpectation,
				"remark":              order.Remark,
				"confirmed_at":        order.ConfirmedAt,
				"cancelled_at":        order.CancelledAt,
				"version":             current.Version + 1,
				"updated_at":          now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		if err := saveLines(tx, order); err != nil {
			return err
		}
		order.IncrementVersion()
		order.UpdatedAt = now
		return nil
	})
}

// saveLines replaces the stored lines of order and their move links
func saveLines(tx *gorm.DB, order *trade.PurchaseOrder) error {
	ids := make([]uuid.UUID, len(order.Lines))
	for i, line := range order.Lines {
		ids[i] = line.ID
	}

	stale := tx.Where("order_id = ?", order.ID)
	if len(ids) > 0 {
		stale = stale.Where("id NOT IN ?", ids)
	}
	var staleIDs []uuid.UUID
	if err := stale.Model(&models.PurchaseLineModel{}).Pluck("id", &staleIDs).Error; err != nil {
		return err
	}
	if len(staleIDs) > 0 {
		if err := tx.Where("line_id IN ?", staleIDs).Delete(&models.PurchaseLineMoveModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", staleIDs).Delete(&models.PurchaseLineModel{}).Error; err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if err := tx.Where("line_id IN ?", ids).Delete(&models.PurchaseLineMoveModel{}).Error; err != nil {
		return err
	}
	now := time.Now()
	for i, line := range order.Lines {
		line.OrderID = order.ID
		model := models.PurchaseLineModelFromDomain(line, i, now)
		if err := tx.Omit("MoveLinks").Save(model).Error; err != nil {
			return err
		}
		if len(model.MoveLinks) > 0 {
			if err := tx.Create(&model.MoveLinks).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
