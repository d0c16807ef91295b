package entity

import (
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// MoveKind classifies a stock move by the commercial event that caused it.
type MoveKind string

const (
	MoveKindPurchase       MoveKind = "purchase"
	MoveKindSale           MoveKind = "sale"
	MoveKindSaleReturn     MoveKind = "sale_return"
	MoveKindPurchaseReturn MoveKind = "purchase_return"
	MoveKindAdjustment     MoveKind = "adjustment"
)

// Direction returns the stock sign for the kind: +1 increases stock,
// -1 decreases it. Adjustments carry their own sign and return 0.
func (k MoveKind) Direction() int {
	switch k {
	case MoveKindPurchase, MoveKindSaleReturn:
		return 1
	case MoveKindSale, MoveKindPurchaseReturn:
		return -1
	default:
		return 0
	}
}

// DecreasesStock reports whether the kind removes units from stock and is
// therefore subject to the oversell guard.
func (k MoveKind) DecreasesStock() bool {
	return k.Direction() < 0
}

// IsValid reports whether k is one of the known kinds.
func (k MoveKind) IsValid() bool {
	switch k {
	case MoveKindPurchase, MoveKindSale, MoveKindSaleReturn, MoveKindPurchaseReturn, MoveKindAdjustment:
		return true
	}
	return false
}

// StockMove is one immutable ledger entry: a signed quantity change for one
// product, caused by one transaction line. Moves are never updated or
// deleted; corrections are made by appending a compensating entry.
type StockMove struct {
	// LineID is the unique identifier for this ledger line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// TransactionID references the header this move belongs to
	TransactionID id.ID `db:"transaction_id" json:"transactionId"`

	// ProductID references the moved product
	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity is the signed stock delta: positive increases stock
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitPrice is the price per unit at the time of the move
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Kind classifies the move
	Kind MoveKind `db:"kind" json:"kind"`

	// Period is the business date of the move (for as-of queries)
	Period time.Time `db:"period" json:"period"`

	// CreatedAt is when the move was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMove creates a ledger entry. quantity is the already-signed delta.
func NewStockMove(transactionID, productID id.ID, quantity types.Quantity, unitPrice types.Money, kind MoveKind, period time.Time) StockMove {
	return StockMove{
		LineID:        id.New(),
		TransactionID: transactionID,
		ProductID:     productID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Kind:          kind,
		Period:        period,
		CreatedAt:     time.Now().UTC(),
	}
}
