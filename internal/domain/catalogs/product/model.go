// Package product provides the product catalog.
// Master-data management owns this catalog; the ledger engine reads it to
// resolve prices, tax rates and reorder levels.
package product

import (
	"context"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/types"
)

// Product represents one sellable item.
type Product struct {
	entity.Catalog

	// Barcode is optional and unique when present (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// UnitPrice is the default sale price per unit
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// TaxPercent is the tax rate applied to sales of this product
	TaxPercent types.Money `db:"tax_percent" json:"taxPercent"`

	// ReorderLevel triggers the low-stock report when set (nil = no alert)
	ReorderLevel *types.Quantity `db:"reorder_level" json:"reorderLevel,omitempty"`
}

// New creates a product with required fields.
func New(code, name string, unitPrice, taxPercent types.Money) *Product {
	return &Product{
		Catalog:    entity.NewCatalog(code, name),
		UnitPrice:  unitPrice,
		TaxPercent: taxPercent,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if p.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}

	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice")
	}

	if p.TaxPercent.IsNegative() || p.TaxPercent.GreaterThan(types.MustMoney("100")) {
		return apperror.NewValidation("tax percent must be between 0 and 100").
			WithDetail("field", "taxPercent")
	}

	if p.ReorderLevel != nil && p.ReorderLevel.IsNegative() {
		return apperror.NewValidation("reorder level must not be negative").
			WithDetail("field", "reorderLevel")
	}

	return nil
}
