package product

import (
	"context"

	"shopledger/internal/core/id"
)

// Repository defines storage operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)

	// GetByIDs resolves a set of products in one query. Unknown IDs are
	// simply absent from the result; the caller decides whether that is
	// an error.
	GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*Product, error)

	// Exists reports whether the product is present, without loading it.
	Exists(ctx context.Context, productID id.ID) (bool, error)

	List(ctx context.Context, filter ListFilter) ([]*Product, error)

	// LockForCommit takes row locks on the given products in a stable
	// order. Must be called inside a transaction; it is the critical
	// section guard for concurrent commits on the same product.
	LockForCommit(ctx context.Context, productIDs []id.ID) error
}

// ListFilter for catalog listing.
type ListFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
