package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes the derived stock calculator.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *ledger.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Get handles GET /stock/:productId.
// Stock is the signed sum of ledger moves, optionally as of a historical
// date (?asOf=YYYY-MM-DD).
func (h *StockHandler) Get(c *gin.Context) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id"))
		return
	}

	if v := c.Query("asOf"); v != "" {
		asOf, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid asOf date, expected YYYY-MM-DD"))
			return
		}
		// As-of is inclusive of the whole day
		asOf = asOf.Add(24*time.Hour - time.Nanosecond)

		qty, err := h.service.StockAsOf(c.Request.Context(), productID, asOf)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.NewStockResponse(productID, qty, &asOf))
		return
	}

	qty, err := h.service.CurrentStock(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewStockResponse(productID, qty, nil))
}

// GetBulk handles POST /stock/bulk.
// Returns derived stock for several products in one round-trip.
func (h *StockHandler) GetBulk(c *gin.Context) {
	var req dto.BulkStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productIDs := make([]id.ID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		pid, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").WithDetail("value", raw))
			return
		}
		productIDs = append(productIDs, pid)
	}

	stocks, err := h.service.CurrentStockBulk(c.Request.Context(), productIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockResponse, 0, len(stocks))
	for pid, qty := range stocks {
		items = append(items, dto.NewStockResponse(pid, qty, nil))
	}

	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Movements handles GET /stock/:productId/movements.
// Returns the product's ledger history, newest first.
func (h *StockHandler) Movements(c *gin.Context) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id"))
		return
	}

	filter := ledger.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if v := c.Query("kind"); v != "" {
		kind := entity.MoveKind(v)
		if !kind.IsValid() {
			h.Error(c, apperror.NewValidation("invalid move kind").WithDetail("value", v))
			return
		}
		filter.Kind = &kind
	}

	if v := c.Query("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date, expected YYYY-MM-DD"))
			return
		}
		filter.FromDate = &from
	}

	if v := c.Query("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date, expected YYYY-MM-DD"))
			return
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &to
	}

	moves, err := h.service.MovementHistory(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromStockMoves(moves),
		Count:  len(moves),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}
