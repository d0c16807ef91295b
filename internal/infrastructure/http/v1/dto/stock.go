package dto

import (
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/reports"
)

// --- Stock ---

// StockResponse is one product's derived stock level.
type StockResponse struct {
	ProductID string     `json:"productId"`
	Quantity  int64      `json:"quantity"`
	AsOf      *time.Time `json:"asOf,omitempty"`
}

// NewStockResponse creates a stock response.
func NewStockResponse(productID id.ID, qty types.Quantity, asOf *time.Time) StockResponse {
	return StockResponse{
		ProductID: productID.String(),
		Quantity:  qty.Int64(),
		AsOf:      asOf,
	}
}

// BulkStockRequest asks for derived stock of several products at once.
type BulkStockRequest struct {
	ProductIDs []string `json:"productIds" binding:"required"`
}

// --- Reports ---

// SalesSummaryQuery binds the sales report query string.
type SalesSummaryQuery struct {
	From           string `form:"from" binding:"required"`
	To             string `form:"to" binding:"required"`
	IncludeReturns bool   `form:"includeReturns"`
}

// SalesByDayResponse is one row of the per-day breakdown.
type SalesByDayResponse struct {
	Day   string      `json:"day"`
	Total types.Money `json:"total"`
	Count int         `json:"count"`
}

// SalesSummaryResponse is the aggregate sales report.
type SalesSummaryResponse struct {
	FromDate time.Time            `json:"fromDate"`
	ToDate   time.Time            `json:"toDate"`
	Total    types.Money          `json:"total"`
	TaxTotal types.Money          `json:"taxTotal"`
	Count    int                  `json:"count"`
	ByDay    []SalesByDayResponse `json:"byDay"`
}

// FromSalesSummary creates SalesSummaryResponse from the domain report.
func FromSalesSummary(s *reports.SalesSummary) SalesSummaryResponse {
	byDay := make([]SalesByDayResponse, 0, len(s.ByDay))
	for _, d := range s.ByDay {
		byDay = append(byDay, SalesByDayResponse{
			Day:   d.Day.Format("2006-01-02"),
			Total: d.Total,
			Count: d.Count,
		})
	}
	return SalesSummaryResponse{
		FromDate: s.FromDate,
		ToDate:   s.ToDate,
		Total:    s.Total,
		TaxTotal: s.TaxTotal,
		Count:    s.Count,
		ByDay:    byDay,
	}
}

// StockOnHandItemResponse is one row of the stock-on-hand report.
type StockOnHandItemResponse struct {
	ProductID   string      `json:"productId"`
	ProductCode string      `json:"productCode"`
	ProductName string      `json:"productName"`
	Quantity    int64       `json:"quantity"`
	UnitPrice   types.Money `json:"unitPrice"`
}

// FromStockOnHand maps stock-on-hand rows to responses.
func FromStockOnHand(items []reports.StockOnHandItem) []StockOnHandItemResponse {
	out := make([]StockOnHandItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, StockOnHandItemResponse{
			ProductID:   item.ProductID.String(),
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity.Int64(),
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}

// LowStockItemResponse is one row of the low-stock report.
type LowStockItemResponse struct {
	ProductID    string `json:"productId"`
	ProductCode  string `json:"productCode"`
	ProductName  string `json:"productName"`
	Quantity     int64  `json:"quantity"`
	ReorderLevel int64  `json:"reorderLevel"`
}

// FromLowStock maps low-stock rows to responses.
func FromLowStock(items []reports.LowStockItem) []LowStockItemResponse {
	out := make([]LowStockItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, LowStockItemResponse{
			ProductID:    item.ProductID.String(),
			ProductCode:  item.ProductCode,
			ProductName:  item.ProductName,
			Quantity:     item.Quantity.Int64(),
			ReorderLevel: item.ReorderLevel.Int64(),
		})
	}
	return out
}
