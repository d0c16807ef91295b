// Package ledger provides the append-only stock ledger and the derived
// stock calculator. Current stock is always re-derived from the signed sum
// of committed moves; there is no mutable counter anywhere.
package ledger

import (
	"context"
	"time"

	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Repository defines storage operations for the stock ledger.
type Repository interface {
	// AppendMoves batch inserts ledger entries. Entries are immutable
	// once written; there is deliberately no update or delete.
	AppendMoves(ctx context.Context, moves []entity.StockMove) error

	// SumByProduct returns the signed quantity sum for one product.
	// Missing ledger rows mean zero, not an error.
	SumByProduct(ctx context.Context, productID id.ID) (types.Quantity, error)

	// SumByProducts returns signed sums for a set of products in one
	// query. Products with no moves are reported as zero.
	SumByProducts(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error)

	// SumByProductAsOf returns the signed sum of moves with period <= asOf.
	SumByProductAsOf(ctx context.Context, productID id.ID, asOf time.Time) (types.Quantity, error)

	// MovesByTransaction retrieves the ledger entries of one header.
	MovesByTransaction(ctx context.Context, transactionID id.ID) ([]entity.StockMove, error)

	// MovementHistory returns a product's moves, newest first.
	MovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMove, error)
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	Kind     *entity.MoveKind
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
