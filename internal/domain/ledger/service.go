package ledger

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/product"
)

// Service derives stock levels from the ledger. Read-only and side-effect
// free: the non-negative rule is enforced at write time by the committer,
// never clamped here. A momentarily negative sum from a data anomaly is
// returned as-is.
type Service struct {
	repo     Repository
	products product.Repository
}

// NewService creates a new stock calculator.
func NewService(repo Repository, products product.Repository) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// CurrentStock returns the signed sum of all committed moves for the product.
// Fails with NOT_FOUND if the product does not exist.
func (s *Service) CurrentStock(ctx context.Context, productID id.ID) (types.Quantity, error) {
	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return 0, apperror.NewNotFound("product", productID.String())
	}

	qty, err := s.repo.SumByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("sum moves: %w", err)
	}

	return qty, nil
}

// CurrentStockBulk returns signed sums for a set of products.
// Unknown IDs are silently absent; an empty set yields an empty map.
func (s *Service) CurrentStockBulk(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error) {
	if len(productIDs) == 0 {
		return map[id.ID]types.Quantity{}, nil
	}

	known, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}

	knownIDs := make([]id.ID, 0, len(known))
	for pid := range known {
		knownIDs = append(knownIDs, pid)
	}
	if len(knownIDs) == 0 {
		return map[id.ID]types.Quantity{}, nil
	}

	sums, err := s.repo.SumByProducts(ctx, knownIDs)
	if err != nil {
		return nil, fmt.Errorf("sum moves: %w", err)
	}

	return sums, nil
}

// StockAsOf returns the stock level considering only moves with a business
// date at or before asOf. Used for historical reporting.
func (s *Service) StockAsOf(ctx context.Context, productID id.ID, asOf time.Time) (types.Quantity, error) {
	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return 0, apperror.NewNotFound("product", productID.String())
	}

	qty, err := s.repo.SumByProductAsOf(ctx, productID, asOf)
	if err != nil {
		return 0, fmt.Errorf("sum moves as of: %w", err)
	}

	return qty, nil
}

// MovementHistory returns a product's ledger entries, newest first.
func (s *Service) MovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMove, error) {
	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, apperror.NewNotFound("product", productID.String())
	}

	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	return s.repo.MovementHistory(ctx, productID, filter)
}
