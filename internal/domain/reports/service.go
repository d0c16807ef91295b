package reports

import (
	"context"
	"fmt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/tx"
)

// Repository defines the aggregation queries behind the reports.
type Repository interface {
	GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error)
	GetStockOnHand(ctx context.Context, filter StockOnHandFilter) ([]StockOnHandItem, error)
	GetLowStock(ctx context.Context) ([]LowStockItem, error)
}

// Service provides report generation operations.
type Service struct {
	repo Repository
	txRO tx.ReadOnlyManager
}

// NewService creates a new reports service. txRO may be nil; reports that
// need one consistent snapshot across multiple queries then run without it.
func NewService(repo Repository, txRO tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, txRO: txRO}
}

// GetSalesSummary returns total sales value and count over a date range
// with a per-day breakdown. The totals and the by-day rows come from
// separate queries, so they run in one read-only transaction to see the
// same committed set.
func (s *Service) GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	var summary *SalesSummary
	query := func(ctx context.Context) error {
		var err error
		summary, err = s.repo.GetSalesSummary(ctx, filter)
		return err
	}

	var err error
	if s.txRO != nil {
		err = s.txRO.ReadOnly(ctx, query)
	} else {
		err = query(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("get sales summary: %w", err)
	}

	return summary, nil
}

// GetStockOnHand returns per-product derived stock, optionally as of a
// historical date.
func (s *Service) GetStockOnHand(ctx context.Context, filter StockOnHandFilter) ([]StockOnHandItem, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	items, err := s.repo.GetStockOnHand(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock on hand: %w", err)
	}

	return items, nil
}

// GetLowStock lists products whose derived stock is at or below their
// reorder level. Products without a reorder level are never listed.
func (s *Service) GetLowStock(ctx context.Context) ([]LowStockItem, error) {
	items, err := s.repo.GetLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("get low stock: %w", err)
	}

	return items, nil
}
