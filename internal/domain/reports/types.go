// Package reports provides read-only aggregations over the ledger and the
// transaction journal. Pure derived views; no invariants beyond read
// consistency with the store.
package reports

import (
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// --- Sales summary ---

// SalesSummaryFilter selects the reporting period.
type SalesSummaryFilter struct {
	FromDate time.Time
	ToDate   time.Time

	// IncludeReturns counts credit notes (negative totals) in the sums.
	IncludeReturns bool
}

// SalesByDay is one row of the per-day breakdown.
type SalesByDay struct {
	Day   time.Time   `db:"day" json:"day"`
	Total types.Money `db:"total" json:"total"`
	Count int         `db:"count" json:"count"`
}

// SalesSummary is the aggregate sales report.
type SalesSummary struct {
	FromDate time.Time    `json:"fromDate"`
	ToDate   time.Time    `json:"toDate"`
	Total    types.Money  `json:"total"`
	TaxTotal types.Money  `json:"taxTotal"`
	Count    int          `json:"count"`
	ByDay    []SalesByDay `json:"byDay"`
}

// --- Stock on hand ---

// StockOnHandFilter restricts the stock report.
type StockOnHandFilter struct {
	// AsOf computes historical stock from moves up to this date (nil = now).
	AsOf *time.Time

	// ExcludeZero drops products with zero on-hand quantity.
	ExcludeZero bool

	Limit  int
	Offset int
}

// StockOnHandItem is one product's derived stock level.
type StockOnHandItem struct {
	ProductID   id.ID          `db:"product_id" json:"productId"`
	ProductCode string         `db:"product_code" json:"productCode"`
	ProductName string         `db:"product_name" json:"productName"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice   types.Money    `db:"unit_price" json:"unitPrice"`
}

// --- Low stock ---

// LowStockItem is a product at or below its reorder level.
type LowStockItem struct {
	ProductID    id.ID          `db:"product_id" json:"productId"`
	ProductCode  string         `db:"product_code" json:"productCode"`
	ProductName  string         `db:"product_name" json:"productName"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	ReorderLevel types.Quantity `db:"reorder_level" json:"reorderLevel"`
}
