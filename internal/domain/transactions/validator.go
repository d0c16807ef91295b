package transactions

import (
	"context"
	"fmt"
	"sort"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/ledger"
)

// ValidatedLine is a line that passed all checks, with its product resolved.
type ValidatedLine struct {
	Product   *product.Product
	Quantity  types.Quantity // positive, as submitted
	UnitPrice types.Money
}

// Validated is the outcome of validation: lines ready to commit.
type Validated struct {
	Request Request
	Lines   []ValidatedLine

	// decreases holds the aggregated requested decrease per product for
	// stock-reducing kinds. Lines referencing the same product are summed
	// before the check so an oversell split across lines is caught.
	decreases map[id.ID]types.Quantity
}

// Validator checks proposed transactions against business rules and the
// current derived stock view before any write occurs.
type Validator struct {
	products product.Repository
	moves    ledger.Repository
}

// NewValidator creates a transaction validator.
func NewValidator(products product.Repository, moves ledger.Repository) *Validator {
	return &Validator{
		products: products,
		moves:    moves,
	}
}

// Validate applies the rules in order, collecting every problem it finds so
// the caller can surface a complete error list, not just the first failure.
func (v *Validator) Validate(ctx context.Context, req Request) (*Validated, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	if len(req.Lines) == 0 {
		return nil, apperror.NewEmptyTransaction()
	}

	var problems []map[string]any

	// Positive quantities.
	for i, line := range req.Lines {
		if !line.Quantity.IsPositive() {
			problems = append(problems, map[string]any{
				"code":     apperror.CodeInvalidQuantity,
				"line":     i,
				"quantity": line.Quantity.Int64(),
			})
		}
		if line.UnitPrice.IsNegative() {
			problems = append(problems, map[string]any{
				"code":    apperror.CodeValidation,
				"line":    i,
				"message": "unit price must not be negative",
			})
		}
	}

	// Known products.
	productIDs := uniqueProductIDs(req.Lines)
	known, err := v.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	for _, pid := range productIDs {
		if _, ok := known[pid]; !ok {
			problems = append(problems, map[string]any{
				"code":       apperror.CodeUnknownProduct,
				"product_id": pid.String(),
			})
		}
	}

	if len(problems) > 0 {
		return nil, validationError(problems)
	}

	validated := &Validated{Request: req}
	for _, line := range req.Lines {
		validated.Lines = append(validated.Lines, ValidatedLine{
			Product:   known[line.ProductID],
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	// Oversell guard for stock-decreasing kinds. Returns invert the
	// semantic kind: a sale with isReturn restores stock and skips the
	// check; a purchase return removes stock and is checked.
	moveKind := req.Kind.MoveKind(req.IsReturn)
	if moveKind.DecreasesStock() {
		validated.decreases = aggregateDecreases(req.Lines)
		if err := v.CheckStock(ctx, validated); err != nil {
			return nil, err
		}
	}

	return validated, nil
}

// CheckStock compares the aggregated requested decrease against the derived
// stock for every involved product and reports all shortages at once.
//
// The committer calls this a second time inside the atomic unit of work,
// after taking product row locks, to close the window between an external
// validation call and the commit.
func (v *Validator) CheckStock(ctx context.Context, validated *Validated) error {
	if len(validated.decreases) == 0 {
		return nil
	}

	ids := make([]id.ID, 0, len(validated.decreases))
	for pid := range validated.decreases {
		ids = append(ids, pid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	available, err := v.moves.SumByProducts(ctx, ids)
	if err != nil {
		return fmt.Errorf("sum stock: %w", err)
	}

	var shortages []apperror.StockShortage
	for _, pid := range ids {
		requested := validated.decreases[pid]
		have := available[pid]
		if requested > have {
			shortages = append(shortages, apperror.StockShortage{
				ProductID: pid.String(),
				Requested: requested.Int64(),
				Available: have.Int64(),
			})
		}
	}

	if len(shortages) > 0 {
		return apperror.NewInsufficientStock(shortages)
	}

	return nil
}

// ProductIDs returns the involved product IDs in a stable order, used for
// deterministic lock acquisition.
func (val *Validated) ProductIDs() []id.ID {
	ids := uniqueProductIDs(val.Request.Lines)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func uniqueProductIDs(lines []LineInput) []id.ID {
	seen := make(map[id.ID]struct{}, len(lines))
	ids := make([]id.ID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

// aggregateDecreases sums the requested quantity per product across lines.
// Checking line-by-line against the same unchanged snapshot would allow an
// oversell split across two lines of the same product.
func aggregateDecreases(lines []LineInput) map[id.ID]types.Quantity {
	agg := make(map[id.ID]types.Quantity, len(lines))
	for _, line := range lines {
		agg[line.ProductID] += line.Quantity
	}
	return agg
}

// validationError folds collected problems into a single error. The code of
// the first problem wins when all problems share it; mixed problems surface
// as a generic validation error.
func validationError(problems []map[string]any) *apperror.AppError {
	code := problems[0]["code"].(string)
	for _, p := range problems[1:] {
		if p["code"] != code {
			code = apperror.CodeValidation
			break
		}
	}

	var appErr *apperror.AppError
	switch code {
	case apperror.CodeInvalidQuantity:
		appErr = &apperror.AppError{
			Code:       code,
			Message:    "line quantity must be positive",
			HTTPStatus: 400,
		}
	case apperror.CodeUnknownProduct:
		appErr = &apperror.AppError{
			Code:       code,
			Message:    "unknown product",
			HTTPStatus: 400,
		}
	default:
		appErr = apperror.NewValidation("invalid transaction")
	}

	return appErr.WithDetail("problems", problems)
}
