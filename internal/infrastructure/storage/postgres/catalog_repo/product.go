package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// Compile-time check that ProductRepo implements product.Repository.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetByBarcode retrieves a product by scanned barcode.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"barcode": barcode}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", barcode)
		}
		return nil, err
	}
	return item, nil
}

// GetByIDs resolves a set of products in one query.
// Unknown IDs are absent from the result map.
func (r *ProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*product.Product, error) {
	result := make(map[id.ID]*product.Product, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": productIDs})

	items, err := r.FindMany(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}

	for _, item := range items {
		result[item.ID] = item
	}
	return result, nil
}

// List retrieves products with filtering and pagination.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	q := r.baseSelect().
		OrderBy("name ASC")

	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"barcode": pattern},
		})
	}

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return r.FindMany(ctx, q)
}

// LockForCommit takes row locks on the given products in a stable order.
// Stable ordering prevents deadlocks between concurrent commits that touch
// overlapping product sets. Must be called inside a transaction.
func (r *ProductRepo) LockForCommit(ctx context.Context, productIDs []id.ID) error {
	if len(productIDs) == 0 {
		return nil
	}

	sql := `SELECT id FROM cat_products WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	querier := r.txManager.GetQuerier(ctx)

	var locked []id.ID
	if err := pgxscan.Select(ctx, querier, &locked, sql, productIDs); err != nil {
		return fmt.Errorf("lock products: %w", err)
	}

	if len(locked) != len(productIDs) {
		lockedSet := make(map[id.ID]struct{}, len(locked))
		for _, lid := range locked {
			lockedSet[lid] = struct{}{}
		}
		for _, pid := range productIDs {
			if _, ok := lockedSet[pid]; !ok {
				return apperror.NewUnknownProduct(pid.String())
			}
		}
	}

	return nil
}
