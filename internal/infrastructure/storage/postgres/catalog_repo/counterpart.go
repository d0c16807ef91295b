package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"shopledger/internal/domain/catalogs/counterpart"
	"shopledger/internal/infrastructure/storage/postgres"
)

const counterpartTable = "cat_counterparts"

// Compile-time check that CounterpartRepo implements counterpart.Repository.
var _ counterpart.Repository = (*CounterpartRepo)(nil)

// CounterpartRepo implements counterpart.Repository.
type CounterpartRepo struct {
	*BaseCatalogRepo[*counterpart.Counterpart]
}

// NewCounterpartRepo creates a new counterpart repository.
func NewCounterpartRepo(txManager *postgres.TxManager) *CounterpartRepo {
	return &CounterpartRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			counterpartTable,
			postgres.ExtractDBColumns[counterpart.Counterpart](),
			func() *counterpart.Counterpart { return &counterpart.Counterpart{} },
		),
	}
}

// List retrieves counterparts, optionally filtered by kind.
func (r *CounterpartRepo) List(ctx context.Context, kind *counterpart.Kind, limit, offset int) ([]*counterpart.Counterpart, error) {
	q := r.baseSelect().
		OrderBy("name ASC")

	if kind != nil {
		q = q.Where(squirrel.Eq{"kind": *kind})
	}

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	return r.FindMany(ctx, q)
}
