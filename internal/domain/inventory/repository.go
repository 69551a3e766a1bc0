package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockMoveRepository persists stock moves
type StockMoveRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockMove, error)
	// FindByIDs returns the moves among ids, in no particular order. Unknown ids are skipped.
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*StockMove, error)
	FindByPurchaseLine(ctx context.Context, tenantID, lineID uuid.UUID) ([]*StockMove, error)
	// FindReducible returns the moves among ids for productID whose state is not
	// in excluded, ordered by requested quantity then fulfilled quantity.
	// Matching rows are locked for the rest of the transaction where the
	// database supports it.
	FindReducible(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, productID uuid.UUID, excluded []MoveState) ([]*StockMove, error)
	Save(ctx context.Context, move *StockMove) error
	SaveBatch(ctx context.Context, moves []*StockMove) error
}

// PickingRepository persists receipt pickings together with their moves
type PickingRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Picking, error)
	Save(ctx context.Context, picking *Picking) error
}
