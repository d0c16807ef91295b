package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/internal/domain/reports"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler exposes read-only report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// SalesSummary handles GET /reports/sales-summary.
func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	var query dto.SalesSummaryQuery
	if !h.BindQuery(c, &query) {
		return
	}

	from, err := time.Parse("2006-01-02", query.From)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid from date, expected YYYY-MM-DD"))
		return
	}

	to, err := time.Parse("2006-01-02", query.To)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid to date, expected YYYY-MM-DD"))
		return
	}
	// Include the whole end day
	to = to.Add(24*time.Hour - time.Nanosecond)

	summary, err := h.service.GetSalesSummary(c.Request.Context(), reports.SalesSummaryFilter{
		FromDate:       from,
		ToDate:         to,
		IncludeReturns: query.IncludeReturns,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesSummary(summary))
}

// StockOnHand handles GET /reports/stock-on-hand.
func (h *ReportsHandler) StockOnHand(c *gin.Context) {
	filter := reports.StockOnHandFilter{
		ExcludeZero: c.Query("excludeZero") == "true",
		Limit:       h.ParseIntQuery(c, "limit", 100),
		Offset:      h.ParseIntQuery(c, "offset", 0),
	}

	if v := c.Query("asOf"); v != "" {
		asOf, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid asOf date, expected YYYY-MM-DD"))
			return
		}
		asOf = asOf.Add(24*time.Hour - time.Nanosecond)
		filter.AsOf = &asOf
	}

	items, err := h.service.GetStockOnHand(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromStockOnHand(items),
		Count:  len(items),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// LowStock handles GET /reports/low-stock.
func (h *ReportsHandler) LowStock(c *gin.Context) {
	items, err := h.service.GetLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items: dto.FromLowStock(items),
		Count: len(items),
	})
}
