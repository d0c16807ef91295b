package transactions

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/apperror"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/ledger"
	"shopledger/pkg/logger"
	"shopledger/pkg/numerator"
)

// AuditLogger records committed transactions in the audit trail.
type AuditLogger interface {
	LogCommit(ctx context.Context, t *Transaction) error
}

// Service is the transaction committer. It wraps validation, the ledger
// writes and the header write in one atomic unit of work: either the full
// header with all of its moves exists, or none of it does.
type Service struct {
	validator *Validator
	headers   Repository
	moves     ledger.Repository
	products  product.Repository
	numbers   *numerator.Service
	audit     AuditLogger
	txManager tx.Manager
}

// NewService creates a transaction committer.
func NewService(
	validator *Validator,
	headers Repository,
	moves ledger.Repository,
	products product.Repository,
	numbers *numerator.Service,
	audit AuditLogger,
	txManager tx.Manager,
) *Service {
	return &Service{
		validator: validator,
		headers:   headers,
		moves:     moves,
		products:  products,
		numbers:   numbers,
		audit:     audit,
		txManager: txManager,
	}
}

// Commit validates the request and, on success, writes the header and one
// stock move per line atomically. Validation failures abort with no ledger
// writes. Storage failures and lock conflicts roll back everything and
// surface COMMIT_FAILED; the engine never retries on its own, so callers
// keep control over re-running side-effecting totals computation.
func (s *Service) Commit(ctx context.Context, req Request) (*Transaction, error) {
	if req.Kind == KindAdjustment {
		return nil, apperror.NewValidation("adjustments are committed via CommitAdjustment").
			WithDetail("field", "kind")
	}

	validated, err := s.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}

	var committed *Transaction
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Serialize commits touching the same products. Lock order is
		// stable, so two multi-product commits cannot deadlock.
		if err := s.products.LockForCommit(ctx, validated.ProductIDs()); err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		// Re-check stock under the lock. Two concurrent sales may both
		// have passed validation against the same stale snapshot; only
		// the first to lock can still see sufficient stock.
		if err := s.validator.CheckStock(ctx, validated); err != nil {
			return err
		}

		t, err := s.buildTransaction(ctx, validated)
		if err != nil {
			return err
		}

		if err := s.headers.Create(ctx, t); err != nil {
			return fmt.Errorf("create header: %w", err)
		}

		if err := s.moves.AppendMoves(ctx, t.Moves); err != nil {
			return fmt.Errorf("append moves: %w", err)
		}

		if s.audit != nil {
			if err := s.audit.LogCommit(ctx, t); err != nil {
				return fmt.Errorf("audit commit: %w", err)
			}
		}

		committed = t
		return nil
	})
	if err != nil {
		return nil, commitError(err)
	}

	logger.Info(ctx, "transaction committed",
		"id", committed.ID,
		"number", committed.Number,
		"kind", committed.Kind,
		"is_return", committed.IsReturn,
		"lines", len(committed.Moves),
		"grand_total", committed.GrandTotal,
	)

	return committed, nil
}

// CommitAdjustment appends a single signed correction move with its own
// header. Negative deltas are subject to the oversell guard like any other
// stock decrease.
func (s *Service) CommitAdjustment(ctx context.Context, productID id.ID, delta types.Quantity, note string) (*Transaction, error) {
	if delta.IsZero() {
		return nil, apperror.NewValidation("adjustment delta must not be zero").
			WithDetail("field", "delta")
	}

	var committed *Transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.products.LockForCommit(ctx, []id.ID{productID}); err != nil {
			return fmt.Errorf("lock product: %w", err)
		}

		prods, err := s.products.GetByIDs(ctx, []id.ID{productID})
		if err != nil {
			return fmt.Errorf("resolve product: %w", err)
		}
		prod, ok := prods[productID]
		if !ok {
			return apperror.NewUnknownProduct(productID.String())
		}

		if delta.IsNegative() {
			available, err := s.moves.SumByProduct(ctx, productID)
			if err != nil {
				return fmt.Errorf("sum stock: %w", err)
			}
			if delta.Neg() > available {
				return apperror.NewInsufficientStock([]apperror.StockShortage{{
					ProductID: productID.String(),
					Requested: delta.Neg().Int64(),
					Available: available.Int64(),
				}})
			}
		}

		now := time.Now().UTC()
		number, err := s.numbers.NextNumber(ctx, numerator.DefaultConfig(KindAdjustment.NumberPrefix(false)), now)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}

		t := &Transaction{
			ID:         id.New(),
			Number:     number,
			Kind:       KindAdjustment,
			Discount:   types.ZeroMoney(),
			Subtotal:   types.ZeroMoney(),
			TaxTotal:   types.ZeroMoney(),
			GrandTotal: types.ZeroMoney(),
			Date:       now,
			Note:       note,
			CreatedBy:  appctx.GetOperator(ctx),
			CreatedAt:  now,
		}
		t.Moves = []entity.StockMove{
			entity.NewStockMove(t.ID, productID, delta, prod.UnitPrice, entity.MoveKindAdjustment, t.Date),
		}

		if err := s.headers.Create(ctx, t); err != nil {
			return fmt.Errorf("create header: %w", err)
		}
		if err := s.moves.AppendMoves(ctx, t.Moves); err != nil {
			return fmt.Errorf("append moves: %w", err)
		}
		if s.audit != nil {
			if err := s.audit.LogCommit(ctx, t); err != nil {
				return fmt.Errorf("audit commit: %w", err)
			}
		}

		committed = t
		return nil
	})
	if err != nil {
		return nil, commitError(err)
	}

	logger.Info(ctx, "stock adjusted",
		"id", committed.ID,
		"number", committed.Number,
		"product_id", productID,
		"delta", delta,
	)

	return committed, nil
}

// GetByID retrieves a committed transaction with its moves.
func (s *Service) GetByID(ctx context.Context, transactionID id.ID) (*Transaction, error) {
	t, err := s.headers.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return s.withMoves(ctx, t)
}

// GetByNumber retrieves a committed transaction by document number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Transaction, error) {
	t, err := s.headers.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.withMoves(ctx, t)
}

func (s *Service) withMoves(ctx context.Context, t *Transaction) (*Transaction, error) {
	moves, err := s.moves.MovesByTransaction(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("get moves: %w", err)
	}
	t.Moves = moves
	return t, nil
}

// List retrieves the transaction journal.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.headers.List(ctx, filter)
}

// buildTransaction computes totals and materializes header plus moves.
// Totals are computed pre-sign and flipped for returns, mirroring how the
// original paper trail records credit notes as negative documents.
func (s *Service) buildTransaction(ctx context.Context, validated *Validated) (*Transaction, error) {
	req := validated.Request

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	subtotal := types.ZeroMoney()
	taxTotal := types.ZeroMoney()
	for _, line := range validated.Lines {
		lineTotal := line.UnitPrice.Mul(line.Quantity.Decimal())
		// Tax is rounded per line to two decimals, so the stored total
		// matches the sum of printed line taxes.
		lineTax := lineTotal.Mul(line.Product.TaxPercent).Div(types.MustMoney("100")).Round(2)
		subtotal = subtotal.Add(lineTotal)
		taxTotal = taxTotal.Add(lineTax)
	}
	grand := subtotal.Sub(req.Discount).Add(taxTotal)

	if req.IsReturn {
		subtotal = subtotal.Neg()
		taxTotal = taxTotal.Neg()
		grand = grand.Neg()
	}

	number, err := s.numbers.NextNumber(ctx, numerator.DefaultConfig(req.Kind.NumberPrefix(req.IsReturn)), date)
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	t := &Transaction{
		ID:            id.New(),
		Number:        number,
		Kind:          req.Kind,
		IsReturn:      req.IsReturn,
		CounterpartID: req.CounterpartID,
		Discount:      req.Discount,
		Subtotal:      subtotal,
		TaxTotal:      taxTotal,
		GrandTotal:    grand,
		Date:          date,
		Note:          req.Note,
		CreatedBy:     appctx.GetOperator(ctx),
		CreatedAt:     time.Now().UTC(),
	}

	moveKind := req.Kind.MoveKind(req.IsReturn)
	sign := types.Quantity(moveKind.Direction())
	for _, line := range validated.Lines {
		t.Moves = append(t.Moves, entity.NewStockMove(
			t.ID,
			line.Product.ID,
			line.Quantity*sign,
			line.UnitPrice,
			moveKind,
			date,
		))
	}

	return t, nil
}

// commitError keeps validation and business errors as-is and maps anything
// else (storage failure, lock conflict, serialization error) to
// COMMIT_FAILED so callers get one retryable error kind.
func commitError(err error) error {
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewCommitFailed(err)
}
