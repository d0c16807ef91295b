// Package report_repo provides PostgreSQL implementations for report
// aggregations over the ledger and the transaction journal.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/reports"
	"shopledger/internal/infrastructure/storage/postgres"
)

// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetSalesSummary aggregates committed sales over a date range.
// Credit notes carry negative totals, so including returns nets them off.
func (r *ReportRepo) GetSalesSummary(ctx context.Context, filter reports.SalesSummaryFilter) (*reports.SalesSummary, error) {
	summary := &reports.SalesSummary{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Total:    decimal.Zero,
		TaxTotal: decimal.Zero,
	}

	conditions := "kind = 'sale' AND date >= $1 AND date <= $2"
	if !filter.IncludeReturns {
		conditions += " AND is_return = false"
	}

	totalsSQL := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(grand_total), 0) AS total,
			COALESCE(SUM(tax_total), 0) AS tax_total,
			COUNT(*) AS count
		FROM transactions
		WHERE %s
	`, conditions)

	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, totalsSQL, filter.FromDate, filter.ToDate).
		Scan(&summary.Total, &summary.TaxTotal, &summary.Count)
	if err != nil {
		return nil, fmt.Errorf("sales summary totals: %w", err)
	}

	byDaySQL := fmt.Sprintf(`
		SELECT
			date_trunc('day', date) AS day,
			COALESCE(SUM(grand_total), 0) AS total,
			COUNT(*) AS count
		FROM transactions
		WHERE %s
		GROUP BY day
		ORDER BY day
	`, conditions)

	var byDay []reports.SalesByDay
	if err := pgxscan.Select(ctx, querier, &byDay, byDaySQL, filter.FromDate, filter.ToDate); err != nil {
		return nil, fmt.Errorf("sales summary by day: %w", err)
	}
	summary.ByDay = byDay

	return summary, nil
}

// GetStockOnHand derives per-product stock from the ledger, joined with
// catalog details. Stock is always the signed sum of moves.
func (r *ReportRepo) GetStockOnHand(ctx context.Context, filter reports.StockOnHandFilter) ([]reports.StockOnHandItem, error) {
	asOf := time.Now().UTC()
	if filter.AsOf != nil {
		asOf = *filter.AsOf
	}

	havingClause := ""
	if filter.ExcludeZero {
		havingClause = "HAVING COALESCE(SUM(m.quantity), 0) != 0"
	}

	query := fmt.Sprintf(`
		SELECT
			p.id AS product_id,
			p.code AS product_code,
			p.name AS product_name,
			COALESCE(SUM(m.quantity), 0) AS quantity,
			p.unit_price
		FROM cat_products p
		LEFT JOIN stock_moves m ON m.product_id = p.id AND m.period <= $1
		GROUP BY p.id, p.code, p.name, p.unit_price
		%s
		ORDER BY p.name
		LIMIT $2 OFFSET $3
	`, havingClause)

	var items []reports.StockOnHandItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, asOf, filter.Limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("stock on hand report: %w", err)
	}

	return items, nil
}

// GetLowStock lists products whose derived stock is at or below their
// reorder level. Products without a reorder level never appear.
func (r *ReportRepo) GetLowStock(ctx context.Context) ([]reports.LowStockItem, error) {
	query := `
		SELECT
			p.id AS product_id,
			p.code AS product_code,
			p.name AS product_name,
			COALESCE(SUM(m.quantity), 0) AS quantity,
			p.reorder_level
		FROM cat_products p
		LEFT JOIN stock_moves m ON m.product_id = p.id
		WHERE p.reorder_level IS NOT NULL
		  AND p.is_active = true
		GROUP BY p.id, p.code, p.name, p.reorder_level
		HAVING COALESCE(SUM(m.quantity), 0) <= p.reorder_level
		ORDER BY p.name
	`

	var items []reports.LowStockItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query); err != nil {
		return nil, fmt.Errorf("low stock report: %w", err)
	}

	return items, nil
}
