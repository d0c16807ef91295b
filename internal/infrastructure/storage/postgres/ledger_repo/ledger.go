// Package ledger_repo provides the PostgreSQL implementation of the
// append-only stock ledger.
package ledger_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/storage/postgres"
)

const stockMovesTable = "stock_moves"

var stockMoveColumns = []string{
	"line_id", "transaction_id", "product_id",
	"quantity", "unit_price", "kind",
	"period", "created_at",
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository.
// The stock_moves table is insert-only; the repo exposes no update or
// delete and the schema revokes them as well.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new stock ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// AppendMoves batch inserts ledger entries.
func (r *LedgerRepo) AppendMoves(ctx context.Context, moves []entity.StockMove) error {
	if len(moves) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(moves))
		for _, m := range moves {
			rows = append(rows, []any{
				m.LineID, m.TransactionID, m.ProductID,
				m.Quantity, m.UnitPrice, m.Kind,
				m.Period, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovesTable, stockMoveColumns, rows); err != nil {
			return fmt.Errorf("copy moves: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert (slower). Prefer calling AppendMoves within tx.
	q := r.builder.Insert(stockMovesTable).Columns(stockMoveColumns...)

	for _, m := range moves {
		q = q.Values(
			m.LineID, m.TransactionID, m.ProductID,
			m.Quantity, m.UnitPrice, m.Kind,
			m.Period, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert moves: %w", err)
	}

	return nil
}

// SumByProduct returns the signed quantity sum for one product.
// A product with no moves has zero stock, not an error.
func (r *LedgerRepo) SumByProduct(ctx context.Context, productID id.ID) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_moves
		WHERE product_id = $1
	`

	var sum int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, productID).Scan(&sum)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("sum moves: %w", err)
	}

	return types.Quantity(sum), nil
}

// SumByProducts returns signed sums for a set of products in one query.
// Products with no moves are reported as zero.
func (r *LedgerRepo) SumByProducts(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error) {
	result := make(map[id.ID]types.Quantity, len(productIDs))
	for _, pid := range productIDs {
		result[pid] = 0
	}
	if len(productIDs) == 0 {
		return result, nil
	}

	sql := `
		SELECT product_id, COALESCE(SUM(quantity), 0) AS total
		FROM stock_moves
		WHERE product_id = ANY($1)
		GROUP BY product_id
	`

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, productIDs)
	if err != nil {
		return nil, fmt.Errorf("sum moves by products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid id.ID
		var total int64
		if err := rows.Scan(&pid, &total); err != nil {
			return nil, fmt.Errorf("scan sum row: %w", err)
		}
		result[pid] = types.Quantity(total)
	}

	return result, rows.Err()
}

// SumByProductAsOf returns the signed sum of moves with period <= asOf.
func (r *LedgerRepo) SumByProductAsOf(ctx context.Context, productID id.ID, asOf time.Time) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_moves
		WHERE product_id = $1 AND period <= $2
	`

	var sum int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, productID, asOf).Scan(&sum)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("sum moves as of: %w", err)
	}

	return types.Quantity(sum), nil
}

// MovesByTransaction retrieves the ledger entries of one header.
func (r *LedgerRepo) MovesByTransaction(ctx context.Context, transactionID id.ID) ([]entity.StockMove, error) {
	q := r.builder.Select(stockMoveColumns...).
		From(stockMovesTable).
		Where(squirrel.Eq{"transaction_id": transactionID}).
		OrderBy("created_at", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var moves []entity.StockMove
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &moves, sql, args...); err != nil {
		return nil, fmt.Errorf("select moves: %w", err)
	}

	return moves, nil
}

// MovementHistory returns a product's moves, newest first.
func (r *LedgerRepo) MovementHistory(ctx context.Context, productID id.ID, filter ledger.MovementFilter) ([]entity.StockMove, error) {
	q := r.builder.Select(stockMoveColumns...).
		From(stockMovesTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var moves []entity.StockMove
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &moves, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return moves, nil
}
