package dto

import (
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/counterpart"
	"shopledger/internal/domain/catalogs/product"
)

// --- Products ---

// CreateProductRequest for creating catalog products.
type CreateProductRequest struct {
	Code         string      `json:"code" binding:"required"`
	Name         string      `json:"name" binding:"required"`
	Barcode      *string     `json:"barcode"`
	UnitPrice    types.Money `json:"unitPrice"`
	TaxPercent   types.Money `json:"taxPercent"`
	ReorderLevel *int64      `json:"reorderLevel"`
}

// ToEntity converts the request to a domain product.
func (r CreateProductRequest) ToEntity() *product.Product {
	p := product.New(r.Code, r.Name, r.UnitPrice, r.TaxPercent)
	p.Barcode = r.Barcode
	if r.ReorderLevel != nil {
		level := types.Quantity(*r.ReorderLevel)
		p.ReorderLevel = &level
	}
	return p
}

// UpdateProductRequest for partial catalog updates.
type UpdateProductRequest struct {
	Name         *string      `json:"name"`
	Barcode      *string      `json:"barcode"`
	UnitPrice    *types.Money `json:"unitPrice"`
	TaxPercent   *types.Money `json:"taxPercent"`
	ReorderLevel *int64       `json:"reorderLevel"`
	IsActive     *bool        `json:"isActive"`
	Version      int          `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the changed fields onto an existing product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Barcode != nil {
		p.Barcode = r.Barcode
	}
	if r.UnitPrice != nil {
		p.UnitPrice = *r.UnitPrice
	}
	if r.TaxPercent != nil {
		p.TaxPercent = *r.TaxPercent
	}
	if r.ReorderLevel != nil {
		level := types.Quantity(*r.ReorderLevel)
		p.ReorderLevel = &level
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	p.Version = r.Version
}

// ProductResponse is the API shape of a product.
type ProductResponse struct {
	ID           string      `json:"id"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Barcode      *string     `json:"barcode,omitempty"`
	UnitPrice    types.Money `json:"unitPrice"`
	TaxPercent   types.Money `json:"taxPercent"`
	ReorderLevel *int64      `json:"reorderLevel,omitempty"`
	IsActive     bool        `json:"isActive"`
	Version      int         `json:"version"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// FromProduct creates ProductResponse from a domain product.
func FromProduct(p *product.Product) ProductResponse {
	resp := ProductResponse{
		ID:         p.ID.String(),
		Code:       p.Code,
		Name:       p.Name,
		Barcode:    p.Barcode,
		UnitPrice:  p.UnitPrice,
		TaxPercent: p.TaxPercent,
		IsActive:   p.IsActive,
		Version:    p.Version,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.ReorderLevel != nil {
		level := p.ReorderLevel.Int64()
		resp.ReorderLevel = &level
	}
	return resp
}

// FromProducts maps a product slice to responses.
func FromProducts(items []*product.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, FromProduct(p))
	}
	return out
}

// --- Counterparts ---

// CreateCounterpartRequest for creating suppliers and customers.
type CreateCounterpartRequest struct {
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Kind  string `json:"kind" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ToEntity converts the request to a domain counterpart.
func (r CreateCounterpartRequest) ToEntity() (*counterpart.Counterpart, error) {
	kind := counterpart.Kind(r.Kind)
	if kind != counterpart.KindSupplier && kind != counterpart.KindCustomer {
		return nil, apperror.NewValidation("invalid counterpart kind").
			WithDetail("field", "kind").
			WithDetail("value", r.Kind)
	}

	c := counterpart.New(r.Code, r.Name, kind)
	c.Phone = r.Phone
	c.Email = r.Email
	return c, nil
}

// UpdateCounterpartRequest for partial counterpart updates.
type UpdateCounterpartRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"isActive"`
	Version  int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the changed fields onto an existing counterpart.
func (r UpdateCounterpartRequest) ApplyTo(c *counterpart.Counterpart) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	c.Version = r.Version
}

// CounterpartResponse is the API shape of a counterpart.
type CounterpartResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"isActive"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromCounterpart creates CounterpartResponse from a domain counterpart.
func FromCounterpart(c *counterpart.Counterpart) CounterpartResponse {
	return CounterpartResponse{
		ID:        c.ID.String(),
		Code:      c.Code,
		Name:      c.Name,
		Kind:      string(c.Kind),
		Phone:     c.Phone,
		Email:     c.Email,
		IsActive:  c.IsActive,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// FromCounterparts maps a counterpart slice to responses.
func FromCounterparts(items []*counterpart.Counterpart) []CounterpartResponse {
	out := make([]CounterpartResponse, 0, len(items))
	for _, c := range items {
		out = append(out, FromCounterpart(c))
	}
	return out
}
