package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/transactions"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// TransactionHandler handles HTTP requests for the transaction engine.
type TransactionHandler struct {
	*BaseHandler
	service *transactions.Service
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(base *BaseHandler, service *transactions.Service) *TransactionHandler {
	return &TransactionHandler{BaseHandler: base, service: service}
}

// Commit handles POST /transactions.
// Validates and atomically commits a purchase, sale or return.
func (h *TransactionHandler) Commit(c *gin.Context) {
	var req dto.CommitTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.Commit(c.Request.Context(), *domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromTransaction(t))
}

// CommitAdjustment handles POST /transactions/adjustments.
// Records a manual signed stock correction for one product.
func (h *TransactionHandler) CommitAdjustment(c *gin.Context) {
	var req dto.AdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id").WithDetail("value", req.ProductID))
		return
	}

	t, err := h.service.CommitAdjustment(c.Request.Context(), productID, types.Quantity(req.Delta), req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromTransaction(t))
}

// GetByID handles GET /transactions/:id.
// Returns the header with its ledger entries.
func (h *TransactionHandler) GetByID(c *gin.Context) {
	transactionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), transactionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTransaction(t))
}

// GetByNumber handles GET /transactions/number/:number.
// Looks up a transaction by its document number (e.g. INV-2026-00042).
func (h *TransactionHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.Error(c, apperror.NewValidation("number is required"))
		return
	}

	t, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTransaction(t))
}

// List handles GET /transactions - the transaction journal.
func (h *TransactionHandler) List(c *gin.Context) {
	filter := transactions.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if k := c.Query("kind"); k != "" {
		kind := transactions.Kind(k)
		if !kind.IsValid() {
			h.Error(c, apperror.NewValidation("invalid transaction kind").WithDetail("value", k))
			return
		}
		filter.Kind = &kind
	}

	if v := c.Query("isReturn"); v != "" {
		isReturn := v == "true"
		filter.IsReturn = &isReturn
	}

	if v := c.Query("counterpartId"); v != "" {
		cid, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid counterpart id").WithDetail("value", v))
			return
		}
		filter.CounterpartID = &cid
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
		// Include the whole end day
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &to
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromTransactions(items),
		Count:  len(items),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}
