package dto

import (
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/transactions"
)

// --- Commit ---

// TransactionLineRequest is one submitted line. Quantity is entered
// positive; the committer applies the sign for the transaction kind.
type TransactionLineRequest struct {
	ProductID string      `json:"productId" binding:"required"`
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
}

// CommitTransactionRequest is a proposed purchase, sale or return.
type CommitTransactionRequest struct {
	Kind          string                   `json:"kind" binding:"required"`
	IsReturn      bool                     `json:"isReturn"`
	CounterpartID *string                  `json:"counterpartId"`
	Discount      types.Money              `json:"discount"`
	Date          *time.Time               `json:"date"`
	Note          string                   `json:"note"`
	Lines         []TransactionLineRequest `json:"lines"`
}

// ToDomain converts the request into a transactions.Request.
// ID parse failures on lines are reported as unknown products later by the
// validator; a malformed header counterpart fails fast here.
func (r CommitTransactionRequest) ToDomain() (*transactions.Request, error) {
	req := &transactions.Request{
		Kind:     transactions.Kind(r.Kind),
		IsReturn: r.IsReturn,
		Discount: r.Discount,
		Note:     r.Note,
	}

	if r.Date != nil {
		req.Date = *r.Date
	}

	if r.CounterpartID != nil && *r.CounterpartID != "" {
		cid, err := id.Parse(*r.CounterpartID)
		if err != nil {
			return nil, apperror.NewValidation("invalid counterpart id").
				WithDetail("field", "counterpartId").
				WithDetail("value", *r.CounterpartID)
		}
		req.CounterpartID = &cid
	}

	req.Lines = make([]transactions.LineInput, 0, len(r.Lines))
	for i, line := range r.Lines {
		pid, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("line", i+1).
				WithDetail("value", line.ProductID)
		}
		req.Lines = append(req.Lines, transactions.LineInput{
			ProductID: pid,
			Quantity:  types.Quantity(line.Quantity),
			UnitPrice: line.UnitPrice,
		})
	}

	return req, nil
}

// AdjustmentRequest is a manual stock correction: a signed delta for one
// product (damage, theft, stocktake correction).
type AdjustmentRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Delta     int64  `json:"delta"`
	Note      string `json:"note"`
}

// --- Responses ---

// StockMoveResponse is the API shape of one ledger entry.
type StockMoveResponse struct {
	LineID        string      `json:"lineId"`
	TransactionID string      `json:"transactionId"`
	ProductID     string      `json:"productId"`
	Quantity      int64       `json:"quantity"`
	UnitPrice     types.Money `json:"unitPrice"`
	Kind          string      `json:"kind"`
	Period        time.Time   `json:"period"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// FromStockMove creates StockMoveResponse from a ledger entry.
func FromStockMove(m entity.StockMove) StockMoveResponse {
	return StockMoveResponse{
		LineID:        m.LineID.String(),
		TransactionID: m.TransactionID.String(),
		ProductID:     m.ProductID.String(),
		Quantity:      m.Quantity.Int64(),
		UnitPrice:     m.UnitPrice,
		Kind:          string(m.Kind),
		Period:        m.Period,
		CreatedAt:     m.CreatedAt,
	}
}

// FromStockMoves maps ledger entries to responses.
func FromStockMoves(moves []entity.StockMove) []StockMoveResponse {
	out := make([]StockMoveResponse, 0, len(moves))
	for _, m := range moves {
		out = append(out, FromStockMove(m))
	}
	return out
}

// TransactionResponse is the API shape of a committed transaction.
type TransactionResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	Kind          string              `json:"kind"`
	IsReturn      bool                `json:"isReturn"`
	CounterpartID *string             `json:"counterpartId,omitempty"`
	Discount      types.Money         `json:"discount"`
	Subtotal      types.Money         `json:"subtotal"`
	TaxTotal      types.Money         `json:"taxTotal"`
	GrandTotal    types.Money         `json:"grandTotal"`
	Date          time.Time           `json:"date"`
	Note          string              `json:"note,omitempty"`
	CreatedBy     string              `json:"createdBy,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	Moves         []StockMoveResponse `json:"moves,omitempty"`
}

// FromTransaction creates TransactionResponse from a committed header.
func FromTransaction(t *transactions.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:         t.ID.String(),
		Number:     t.Number,
		Kind:       string(t.Kind),
		IsReturn:   t.IsReturn,
		Discount:   t.Discount,
		Subtotal:   t.Subtotal,
		TaxTotal:   t.TaxTotal,
		GrandTotal: t.GrandTotal,
		Date:       t.Date,
		Note:       t.Note,
		CreatedBy:  t.CreatedBy,
		CreatedAt:  t.CreatedAt,
		Moves:      FromStockMoves(t.Moves),
	}
	if t.CounterpartID != nil {
		cid := t.CounterpartID.String()
		resp.CounterpartID = &cid
	}
	return resp
}

// FromTransactions maps headers to responses.
func FromTransactions(items []*transactions.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(items))
	for _, t := range items {
		out = append(out, FromTransaction(t))
	}
	return out
}
