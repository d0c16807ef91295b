// Package transaction_repo provides the PostgreSQL implementation of the
// transaction journal.
package transaction_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/transactions"
	"shopledger/internal/infrastructure/storage/postgres"
)

const transactionTable = "transactions"

var transactionColumns = []string{
	"id", "number", "kind", "is_return", "counterpart_id",
	"discount", "subtotal", "tax_total", "grand_total",
	"date", "note", "created_by", "created_at",
}

// Ensure interface compliance.
var _ transactions.Repository = (*TransactionRepo)(nil)

// TransactionRepo implements transactions.Repository.
// Headers are written once inside the commit transaction and never mutated.
type TransactionRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewTransactionRepo creates a new transaction journal repository.
func NewTransactionRepo(txManager *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a transaction header.
func (r *TransactionRepo) Create(ctx context.Context, t *transactions.Transaction) error {
	q := r.builder.Insert(transactionTable).
		Columns(transactionColumns...).
		Values(
			t.ID, t.Number, t.Kind, t.IsReturn, t.CounterpartID,
			t.Discount, t.Subtotal, t.TaxTotal, t.GrandTotal,
			t.Date, t.Note, t.CreatedBy, t.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql, args...)
	if err != nil {
		// 23505: unique violation on number
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("transaction", "number", t.Number).WithCause(err)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction header by ID.
func (r *TransactionRepo) GetByID(ctx context.Context, transactionID id.ID) (*transactions.Transaction, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": transactionID}).
		Limit(1)

	return r.findOne(ctx, q, transactionID.String())
}

// GetByNumber retrieves a transaction header by document number.
func (r *TransactionRepo) GetByNumber(ctx context.Context, number string) (*transactions.Transaction, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"number": number}).
		Limit(1)

	return r.findOne(ctx, q, number)
}

// List retrieves transaction headers with filtering, newest first.
func (r *TransactionRepo) List(ctx context.Context, filter transactions.ListFilter) ([]*transactions.Transaction, error) {
	q := r.baseSelect()

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.IsReturn != nil {
		q = q.Where(squirrel.Eq{"is_return": *filter.IsReturn})
	}

	if filter.CounterpartID != nil {
		q = q.Where(squirrel.Eq{"counterpart_id": *filter.CounterpartID})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}

	q = q.OrderBy("date DESC", "created_at DESC")

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

	var items []*transactions.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return items, nil
}

func (r *TransactionRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(transactionColumns...).From(transactionTable)
}

func (r *TransactionRepo) findOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*transactions.Transaction, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t transactions.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", key)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return &t, nil
}
