package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/catalogs/counterpart"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// CounterpartHandler handles HTTP requests for the counterpart catalog.
type CounterpartHandler struct {
	*BaseHandler
	service *counterpart.Service
}

// NewCounterpartHandler creates a new counterpart handler.
func NewCounterpartHandler(base *BaseHandler, service *counterpart.Service) *CounterpartHandler {
	return &CounterpartHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/counterparts.
func (h *CounterpartHandler) Create(c *gin.Context) {
	var req dto.CreateCounterpartRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromCounterpart(entity))
}

// Update handles PATCH /catalog/counterparts/:id.
func (h *CounterpartHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	counterpartID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateCounterpartRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := h.service.GetByID(ctx, counterpartID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(entity)

	if err := h.service.Update(ctx, entity); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCounterpart(entity))
}

// GetByID handles GET /catalog/counterparts/:id.
func (h *CounterpartHandler) GetByID(c *gin.Context) {
	counterpartID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), counterpartID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCounterpart(entity))
}

// List handles GET /catalog/counterparts.
func (h *CounterpartHandler) List(c *gin.Context) {
	var kind *counterpart.Kind
	if k := c.Query("kind"); k != "" {
		parsed := counterpart.Kind(k)
		if parsed != counterpart.KindSupplier && parsed != counterpart.KindCustomer {
			h.Error(c, apperror.NewValidation("invalid counterpart kind").WithDetail("value", k))
			return
		}
		kind = &parsed
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	items, err := h.service.List(c.Request.Context(), kind, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromCounterparts(items),
		Count:  len(items),
		Limit:  limit,
		Offset: offset,
	})
}
