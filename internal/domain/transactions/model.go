// Package transactions provides the transaction validator and committer:
// purchases, sales, returns and adjustments are validated against derived
// stock and written to the ledger in one atomic unit of work.
package transactions

import (
	"context"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Kind is the commercial direction of a transaction.
// Together with IsReturn it selects the ledger move kind:
// {purchase, sale} x {normal, return} rather than four unrelated paths.
type Kind string

const (
	KindPurchase   Kind = "purchase"
	KindSale       Kind = "sale"
	KindAdjustment Kind = "adjustment"
)

// IsValid reports whether k is a known transaction kind.
func (k Kind) IsValid() bool {
	return k == KindPurchase || k == KindSale || k == KindAdjustment
}

// MoveKind resolves the ledger move kind for this transaction kind.
func (k Kind) MoveKind(isReturn bool) entity.MoveKind {
	switch k {
	case KindPurchase:
		if isReturn {
			return entity.MoveKindPurchaseReturn
		}
		return entity.MoveKindPurchase
	case KindSale:
		if isReturn {
			return entity.MoveKindSaleReturn
		}
		return entity.MoveKindSale
	default:
		return entity.MoveKindAdjustment
	}
}

// NumberPrefix returns the document number prefix for the kind.
func (k Kind) NumberPrefix(isReturn bool) string {
	switch k {
	case KindPurchase:
		if isReturn {
			return "PRN"
		}
		return "PO"
	case KindSale:
		if isReturn {
			return "CRN"
		}
		return "INV"
	default:
		return "ADJ"
	}
}

// LineInput is one submitted transaction line. Quantity is always positive
// as entered by the operator; the committer applies the sign.
type LineInput struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// Request is a proposed transaction as submitted by the caller.
type Request struct {
	Kind          Kind
	IsReturn      bool
	CounterpartID *id.ID
	Discount      types.Money
	Date          time.Time // business date; zero means now
	Note          string
	Lines         []LineInput
}

// Validate checks structural fields that do not require storage access.
func (r *Request) Validate(ctx context.Context) error {
	if !r.Kind.IsValid() {
		return apperror.NewValidation("invalid transaction kind").
			WithDetail("field", "kind").
			WithDetail("value", string(r.Kind))
	}

	if r.Discount.IsNegative() {
		return apperror.NewValidation("discount must not be negative").
			WithDetail("field", "discount")
	}

	return nil
}

// Transaction is the committed header grouping one or more stock moves into
// a single commercial event. Totals are computed once at commit time and
// stored redundantly for audit stability; they are never recomputed when
// master-data prices or tax rates change later.
type Transaction struct {
	ID            id.ID          `db:"id" json:"id"`
	Number        string         `db:"number" json:"number"`
	Kind          Kind           `db:"kind" json:"kind"`
	IsReturn      bool           `db:"is_return" json:"isReturn"`
	CounterpartID *id.ID         `db:"counterpart_id" json:"counterpartId,omitempty"`
	Discount      types.Money    `db:"discount" json:"discount"`
	Subtotal      types.Money    `db:"subtotal" json:"subtotal"`
	TaxTotal      types.Money    `db:"tax_total" json:"taxTotal"`
	GrandTotal    types.Money    `db:"grand_total" json:"grandTotal"`
	Date          time.Time      `db:"date" json:"date"`
	Note          string         `db:"note" json:"note,omitempty"`
	CreatedBy     string         `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`

	// Moves are the ledger entries written with this header (>= 1).
	Moves []entity.StockMove `db:"-" json:"moves,omitempty"`
}

// ListFilter for the transaction journal.
type ListFilter struct {
	Kind          *Kind
	IsReturn      *bool
	CounterpartID *id.ID
	FromDate      *time.Time
	ToDate        *time.Time
	Limit         int
	Offset        int
}

// Repository defines storage operations for transaction headers.
// Headers are written once by the committer and never mutated; the only way
// to undo a transaction is to commit a compensating return or adjustment.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, transactionID id.ID) (*Transaction, error)
	GetByNumber(ctx context.Context, number string) (*Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}
