package transactions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	productcat "shopledger/internal/domain/catalogs/product"
	"shopledger/pkg/numerator"
)

// Mock objects

// mockTxManager runs fn directly; atomicity is the real manager's concern.
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockHeaderRepo struct {
	created   []*Transaction
	createErr error
}

func (m *mockHeaderRepo) Create(ctx context.Context, t *Transaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, t)
	return nil
}

func (m *mockHeaderRepo) GetByID(ctx context.Context, transactionID id.ID) (*Transaction, error) {
	for _, t := range m.created {
		if t.ID == transactionID {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("transaction", transactionID.String())
}

func (m *mockHeaderRepo) GetByNumber(ctx context.Context, number string) (*Transaction, error) {
	for _, t := range m.created {
		if t.Number == number {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("transaction", number)
}

func (m *mockHeaderRepo) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return m.created, nil
}

type mockAudit struct {
	logged []*Transaction
}

func (m *mockAudit) LogCommit(ctx context.Context, t *Transaction) error {
	m.logged = append(m.logged, t)
	return nil
}

type seqRow struct {
	val int64
}

func (r *seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.val
	}
	return nil
}

type seqQuerier struct {
	mu      sync.Mutex
	current int64
}

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current++
	return &seqRow{val: q.current}
}

type committerFixture struct {
	service  *Service
	products *mockProductRepo
	moves    *mockLedgerRepo
	headers  *mockHeaderRepo
	audit    *mockAudit
	tx       *mockTxManager
}

type stockedProduct struct {
	product *productcat.Product
	onHand  int64
}

func setupCommitter(t *testing.T, stocked ...stockedProduct) committerFixture {
	t.Helper()

	prods := make([]*productcat.Product, 0, len(stocked))
	moves := &mockLedgerRepo{}
	for _, s := range stocked {
		prods = append(prods, s.product)
		if s.onHand != 0 {
			moves.moves = append(moves.moves, stockMove(s.product.ID, s.onHand))
		}
	}

	productRepo := newMockProductRepo(prods...)
	headers := &mockHeaderRepo{}
	audit := &mockAudit{}
	txm := &mockTxManager{}

	svc := NewService(
		NewValidator(productRepo, moves),
		headers,
		moves,
		productRepo,
		numerator.New(&seqQuerier{}),
		audit,
		txm,
	)

	return committerFixture{
		service:  svc,
		products: productRepo,
		moves:    moves,
		headers:  headers,
		audit:    audit,
		tx:       txm,
	}
}

func TestCommit_PurchaseTotals(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("2.00"), types.MustMoney("5"))
	f := setupCommitter(t, stockedProduct{product: p})

	committed, err := f.service.Commit(context.Background(), Request{
		Kind:  KindPurchase,
		Lines: []LineInput{{ProductID: p.ID, Quantity: 10, UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	// 10 x 2.00 = 20.00 subtotal, 5% tax = 1.00, grand = 21.00
	assert.True(t, committed.Subtotal.Equal(types.MustMoney("20.00")), "subtotal %s", committed.Subtotal)
	assert.True(t, committed.TaxTotal.Equal(types.MustMoney("1.00")), "tax %s", committed.TaxTotal)
	assert.True(t, committed.GrandTotal.Equal(types.MustMoney("21.00")), "grand %s", committed.GrandTotal)
	assert.Equal(t, "PO-2026-00001", committed.Number)

	require.Len(t, committed.Moves, 1)
	assert.Equal(t, types.Quantity(10), committed.Moves[0].Quantity)
	assert.Equal(t, entity.MoveKindPurchase, committed.Moves[0].Kind)

	assert.Len(t, f.headers.created, 1)
	assert.Len(t, f.moves.moves, 1)
	assert.Len(t, f.audit.logged, 1)
	assert.Equal(t, 1, f.tx.calls)
}

func TestCommit_DiscountApplied(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("10.00"), types.MustMoney("0"))
	f := setupCommitter(t, stockedProduct{product: p})

	committed, err := f.service.Commit(context.Background(), Request{
		Kind:     KindPurchase,
		Discount: types.MustMoney("5.00"),
		Lines:    []LineInput{{ProductID: p.ID, Quantity: 2, UnitPrice: types.MustMoney("10.00")}},
	})
	require.NoError(t, err)

	assert.True(t, committed.Subtotal.Equal(types.MustMoney("20.00")))
	assert.True(t, committed.GrandTotal.Equal(types.MustMoney("15.00")))
}

func TestCommit_SaleWritesNegativeMoves(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("3.50"), types.MustMoney("19"))
	f := setupCommitter(t, stockedProduct{product: p, onHand: 10})

	committed, err := f.service.Commit(context.Background(), Request{
		Kind:  KindSale,
		Lines: []LineInput{{ProductID: p.ID, Quantity: 4, UnitPrice: types.MustMoney("3.50")}},
	})
	require.NoError(t, err)

	require.Len(t, committed.Moves, 1)
	assert.Equal(t, types.Quantity(-4), committed.Moves[0].Quantity)
	assert.Equal(t, entity.MoveKindSale, committed.Moves[0].Kind)
	assert.Equal(t, "INV-2026-00001", committed.Number)

	// Derived stock after the sale.
	sum, err := f.moves.SumByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(6), sum)
}

func TestCommit_SaleReturnFlipsTotalsAndRestoresStock(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("2.00"), types.MustMoney("5"))
	f := setupCommitter(t, stockedProduct{product: p})

	committed, err := f.service.Commit(context.Background(), Request{
		Kind:     KindSale,
		IsReturn: true,
		Lines:    []LineInput{{ProductID: p.ID, Quantity: 10, UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	assert.True(t, committed.Subtotal.Equal(types.MustMoney("-20.00")), "subtotal %s", committed.Subtotal)
	assert.True(t, committed.TaxTotal.Equal(types.MustMoney("-1.00")))
	assert.True(t, committed.GrandTotal.Equal(types.MustMoney("-21.00")))
	assert.Equal(t, "CRN-2026-00001", committed.Number)

	require.Len(t, committed.Moves, 1)
	assert.Equal(t, types.Quantity(10), committed.Moves[0].Quantity)
	assert.Equal(t, entity.MoveKindSaleReturn, committed.Moves[0].Kind)
}

func TestCommit_TaxRoundedPerLine(t *testing.T) {
	// 3 x 0.33 = 0.99, 19% = 0.1881 -> rounds to 0.19 per line.
	a := productcat.New("A", "Gum", types.MustMoney("0.33"), types.MustMoney("19"))
	b := productcat.New("B", "Mints", types.MustMoney("0.33"), types.MustMoney("19"))
	f := setupCommitter(t, stockedProduct{product: a}, stockedProduct{product: b})

	committed, err := f.service.Commit(context.Background(), Request{
		Kind: KindPurchase,
		Lines: []LineInput{
			{ProductID: a.ID, Quantity: 3, UnitPrice: types.MustMoney("0.33")},
			{ProductID: b.ID, Quantity: 3, UnitPrice: types.MustMoney("0.33")},
		},
	})
	require.NoError(t, err)

	assert.True(t, committed.TaxTotal.Equal(types.MustMoney("0.38")), "tax %s", committed.TaxTotal)
}

func TestCommit_OversellAbortsWithoutWrites(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("2.00"), types.MustMoney("5"))
	f := setupCommitter(t, stockedProduct{product: p, onHand: 2})

	_, err := f.service.Commit(context.Background(), Request{
		Kind:  KindSale,
		Lines: []LineInput{{ProductID: p.ID, Quantity: 3, UnitPrice: types.MustMoney("2.00")}},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
	assert.Empty(t, f.headers.created)
	assert.Empty(t, f.audit.logged)
}

func TestCommit_StorageFailureMapsToCommitFailed(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("2.00"), types.MustMoney("5"))
	f := setupCommitter(t, stockedProduct{product: p})
	f.headers.createErr = errors.New("connection reset")

	_, err := f.service.Commit(context.Background(), Request{
		Kind:  KindPurchase,
		Lines: []LineInput{{ProductID: p.ID, Quantity: 1, UnitPrice: types.MustMoney("2.00")}},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCommitFailed(err))

	// The cause stays in the chain for logs.
	appErr, _ := apperror.AsAppError(err)
	assert.ErrorContains(t, appErr.Err, "connection reset")
}

func TestCommit_BusinessErrorNotWrappedAsCommitFailed(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("2.00"), types.MustMoney("5"))
	f := setupCommitter(t, stockedProduct{product: p, onHand: 1})

	// The in-lock re-check surfaces the shortage directly, not COMMIT_FAILED.
	validated, err := f.service.validator.Validate(context.Background(), Request{
		Kind:  KindSale,
		Lines: []LineInput{{ProductID: p.ID, Quantity: 1, UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	// Stock drains between validation and commit.
	f.moves.moves = append(f.moves.moves, stockMove(p.ID, -1))

	err = f.service.validator.CheckStock(context.Background(), validated)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestCommit_AdjustmentKindRejected(t *testing.T) {
	f := setupCommitter(t)

	_, err := f.service.Commit(context.Background(), Request{
		Kind:  KindAdjustment,
		Lines: []LineInput{{ProductID: id.New(), Quantity: 1}},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCommit_LocksProductsInStableOrder(t *testing.T) {
	a := productcat.New("A", "Coffee", types.MustMoney("1"), types.MustMoney("0"))
	b := productcat.New("B", "Tea", types.MustMoney("1"), types.MustMoney("0"))
	f := setupCommitter(t, stockedProduct{product: a, onHand: 5}, stockedProduct{product: b, onHand: 5})

	_, err := f.service.Commit(context.Background(), Request{
		Kind: KindSale,
		Lines: []LineInput{
			{ProductID: b.ID, Quantity: 1, UnitPrice: types.MustMoney("1")},
			{ProductID: a.ID, Quantity: 1, UnitPrice: types.MustMoney("1")},
		},
	})
	require.NoError(t, err)

	require.Len(t, f.products.locked, 2)
	assert.True(t, f.products.locked[0].String() < f.products.locked[1].String())
}

func TestCommitAdjustment_PositiveDelta(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("2.00"), types.MustMoney("5"))
	f := setupCommitter(t, stockedProduct{product: p})

	committed, err := f.service.CommitAdjustment(context.Background(), p.ID, 7, "stocktake surplus")
	require.NoError(t, err)

	assert.Equal(t, KindAdjustment, committed.Kind)
	assert.Equal(t, "ADJ-2026-00001", committed.Number)
	assert.True(t, committed.GrandTotal.IsZero())
	require.Len(t, committed.Moves, 1)
	assert.Equal(t, types.Quantity(7), committed.Moves[0].Quantity)
	assert.Equal(t, entity.MoveKindAdjustment, committed.Moves[0].Kind)
}

func TestCommitAdjustment_NegativeDeltaChecked(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("2.00"), types.MustMoney("5"))
	f := setupCommitter(t, stockedProduct{product: p, onHand: 3})

	_, err := f.service.CommitAdjustment(context.Background(), p.ID, -5, "breakage")

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	committed, err := f.service.CommitAdjustment(context.Background(), p.ID, -3, "breakage")
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(-3), committed.Moves[0].Quantity)

	sum, _ := f.moves.SumByProduct(context.Background(), p.ID)
	assert.Equal(t, types.Quantity(0), sum)
}

func TestCommitAdjustment_ZeroDeltaRejected(t *testing.T) {
	f := setupCommitter(t)

	_, err := f.service.CommitAdjustment(context.Background(), id.New(), 0, "noop")

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCommitAdjustment_UnknownProduct(t *testing.T) {
	f := setupCommitter(t)

	_, err := f.service.CommitAdjustment(context.Background(), id.New(), 5, "found on shelf")

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnknownProduct))
}

func TestGetByID_LoadsMoves(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("2.00"), types.MustMoney("5"))
	f := setupCommitter(t, stockedProduct{product: p})

	committed, err := f.service.Commit(context.Background(), Request{
		Kind:  KindPurchase,
		Lines: []LineInput{{ProductID: p.ID, Quantity: 5, UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	got, err := f.service.GetByID(context.Background(), committed.ID)
	require.NoError(t, err)
	assert.Equal(t, committed.Number, got.Number)
	require.Len(t, got.Moves, 1)
	assert.Equal(t, committed.ID, got.Moves[0].TransactionID)
}

func TestCommit_DateDefaultsToNow(t *testing.T) {
	p := productcat.New("COF", "Coffee", types.MustMoney("2.00"), types.MustMoney("5"))
	f := setupCommitter(t, stockedProduct{product: p})

	before := time.Now().UTC()
	committed, err := f.service.Commit(context.Background(), Request{
		Kind:  KindPurchase,
		Lines: []LineInput{{ProductID: p.ID, Quantity: 1, UnitPrice: types.MustMoney("2.00")}},
	})
	require.NoError(t, err)

	assert.False(t, committed.Date.Before(before))
	assert.Equal(t, committed.Date, committed.Moves[0].Period)
}
