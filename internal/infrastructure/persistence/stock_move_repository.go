package persistence

import (
	"context"
	"errors"

	"github.com/erp/purchase/internal/domain/inventory"
	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/infrastructure/persistence/models"
	"github.com/erp/purchase/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockMoveRepository implements StockMoveRepository using GORM
type GormStockMoveRepository struct {
	db *gorm.DB
}

// NewGormStockMoveRepository creates a new GormStockMoveRepository
func NewGormStockMoveRepository(db *gorm.DB) *GormStockMoveRepository {
	return &GormStockMoveRepository{db: db}
}

// FindByID finds a stock move within a tenant
func (r *GormStockMoveRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockMove, error) {
	var model models.StockMoveModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the moves among ids. Unknown ids are skipped.
func (r *GormStockMoveRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*inventory.StockMove, error) {
	if len(ids) == 0 {
		return []*inventory.StockMove{}, nil
	}
	var rows []models.StockMoveModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockMoves(rows), nil
}

// FindByPurchaseLine returns the receipt moves generated from a purchase line
func (r *GormStockMoveRepository) FindByPurchaseLine(ctx context.Context, tenantID, lineID uuid.UUID) ([]*inventory.StockMove, error) {
	var rows []models.StockMoveModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).Where("purchase_line_id = ?", lineID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockMoves(rows), nil
}

// FindReducible returns the open moves among ids for a product, smallest
// requested quantity first. On postgres the rows stay locked FOR UPDATE until
// the surrounding transaction ends.
func (r *GormStockMoveRepository) FindReducible(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, productID uuid.UUID, excluded []inventory.MoveState) ([]*inventory.StockMove, error) {
	if len(ids) == 0 {
		return []*inventory.StockMove{}, nil
	}
	query := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).Where("id IN ? AND product_id = ?", ids, productID)
	if len(excluded) > 0 {
		query = query.Where("state NOT IN ?", excluded)
	}
	if !isSQLite(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []models.StockMoveModel
	if err := query.
		Order("requested_quantity ASC, fulfilled_quantity ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStockMoves(rows), nil
}

// Save creates or updates a stock move
func (r *GormStockMoveRepository) Save(ctx context.Context, move *inventory.StockMove) error {
	move.Touch()
	return r.db.WithContext(ctx).Save(models.StockMoveModelFromDomain(move)).Error
}

// SaveBatch creates or updates several moves in one transaction
func (r *GormStockMoveRepository) SaveBatch(ctx context.Context, moves []*inventory.StockMove) error {
	if len(moves) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range moves {
			m.Touch()
			if err := tx.Save(models.StockMoveModelFromDomain(m)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func toStockMoves(rows []models.StockMoveModel) []*inventory.StockMove {
	moves := make([]*inventory.StockMove, len(rows))
	for i := range rows {
		moves[i] = rows[i].ToDomain()
	}
	return moves
}

// GormPickingRepository implements PickingRepository using GORM
type GormPickingRepository struct {
	db *gorm.DB
}

// NewGormPickingRepository creates a new GormPickingRepository
func NewGormPickingRepository(db *gorm.DB) *GormPickingRepository {
	return &GormPickingRepository{db: db}
}

// FindByID finds a picking with its moves
func (r *GormPickingRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Picking, error) {
	var model models.PickingModel
	if err := r.db.WithContext(ctx).
		Preload("Moves", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Scopes(tenant.Scope(tenantID)).Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a picking and every move it holds
func (r *GormPickingRepository) Save(ctx context.Context, picking *inventory.Picking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		picking.Touch()
		if err := tx.Omit("Moves").Save(models.PickingModelFromDomain(picking)).Error; err != nil {
			return err
		}
		return NewGormStockMoveRepository(tx).SaveBatch(ctx, picking.Moves)
	})
}

var (
	_ inventory.StockMoveRepository = (*GormStockMoveRepository)(nil)
	_ inventory.PickingRepository   = (*GormPickingRepository)(nil)
)
