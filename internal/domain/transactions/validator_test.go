package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/ledger"
)

// Mock objects

type mockProductRepo struct {
	products map[id.ID]*product.Product
	locked   []id.ID
}

func newMockProductRepo(products ...*product.Product) *mockProductRepo {
	m := &mockProductRepo{products: make(map[id.ID]*product.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepo) Create(ctx context.Context, p *product.Product) error { return nil }
func (m *mockProductRepo) Update(ctx context.Context, p *product.Product) error { return nil }

func (m *mockProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := m.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (m *mockProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", code)
}

func (m *mockProductRepo) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", barcode)
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*product.Product, error) {
	result := make(map[id.ID]*product.Product)
	for _, pid := range productIDs {
		if p, ok := m.products[pid]; ok {
			result[pid] = p
		}
	}
	return result, nil
}

func (m *mockProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, ok := m.products[productID]
	return ok, nil
}

func (m *mockProductRepo) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) LockForCommit(ctx context.Context, productIDs []id.ID) error {
	for _, pid := range productIDs {
		if _, ok := m.products[pid]; !ok {
			return apperror.NewUnknownProduct(pid.String())
		}
	}
	m.locked = append(m.locked, productIDs...)
	return nil
}

// mockLedgerRepo derives sums from an in-memory move slice, mirroring the
// real repository's SUM semantics.
type mockLedgerRepo struct {
	moves []entity.StockMove
}

func (m *mockLedgerRepo) AppendMoves(ctx context.Context, moves []entity.StockMove) error {
	m.moves = append(m.moves, moves...)
	return nil
}

func (m *mockLedgerRepo) SumByProduct(ctx context.Context, productID id.ID) (types.Quantity, error) {
	var sum types.Quantity
	for _, mv := range m.moves {
		if mv.ProductID == productID {
			sum += mv.Quantity
		}
	}
	return sum, nil
}

func (m *mockLedgerRepo) SumByProducts(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error) {
	result := make(map[id.ID]types.Quantity, len(productIDs))
	for _, pid := range productIDs {
		sum, _ := m.SumByProduct(ctx, pid)
		result[pid] = sum
	}
	return result, nil
}

func (m *mockLedgerRepo) SumByProductAsOf(ctx context.Context, productID id.ID, asOf time.Time) (types.Quantity, error) {
	var sum types.Quantity
	for _, mv := range m.moves {
		if mv.ProductID == productID && !mv.Period.After(asOf) {
			sum += mv.Quantity
		}
	}
	return sum, nil
}

func (m *mockLedgerRepo) MovesByTransaction(ctx context.Context, transactionID id.ID) ([]entity.StockMove, error) {
	var result []entity.StockMove
	for _, mv := range m.moves {
		if mv.TransactionID == transactionID {
			result = append(result, mv)
		}
	}
	return result, nil
}

func (m *mockLedgerRepo) MovementHistory(ctx context.Context, productID id.ID, filter ledger.MovementFilter) ([]entity.StockMove, error) {
	var result []entity.StockMove
	for _, mv := range m.moves {
		if mv.ProductID == productID {
			result = append(result, mv)
		}
	}
	return result, nil
}

func testProduct(code string, price string) *product.Product {
	return product.New(code, "Product "+code, types.MustMoney(price), types.MustMoney("19"))
}

func stockMove(productID id.ID, qty int64) entity.StockMove {
	return entity.NewStockMove(id.New(), productID, types.Quantity(qty), types.MustMoney("1"), entity.MoveKindPurchase, time.Now().UTC())
}

func TestValidator_EmptyTransaction(t *testing.T) {
	v := NewValidator(newMockProductRepo(), &mockLedgerRepo{})

	_, err := v.Validate(context.Background(), Request{Kind: KindSale})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeEmptyTransaction))
}

func TestValidator_InvalidKind(t *testing.T) {
	v := NewValidator(newMockProductRepo(), &mockLedgerRepo{})

	_, err := v.Validate(context.Background(), Request{Kind: Kind("donation")})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestValidator_NegativeDiscount(t *testing.T) {
	p := testProduct("A", "10")
	v := NewValidator(newMockProductRepo(p), &mockLedgerRepo{})

	_, err := v.Validate(context.Background(), Request{
		Kind:     KindPurchase,
		Discount: types.MustMoney("-1"),
		Lines:    []LineInput{{ProductID: p.ID, Quantity: 1, UnitPrice: p.UnitPrice}},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestValidator_NonPositiveQuantity(t *testing.T) {
	p := testProduct("A", "10")
	v := NewValidator(newMockProductRepo(p), &mockLedgerRepo{})

	for _, qty := range []int64{0, -3} {
		_, err := v.Validate(context.Background(), Request{
			Kind:  KindPurchase,
			Lines: []LineInput{{ProductID: p.ID, Quantity: types.Quantity(qty), UnitPrice: p.UnitPrice}},
		})

		require.Error(t, err, "quantity %d", qty)
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity), "quantity %d", qty)
	}
}

func TestValidator_UnknownProduct(t *testing.T) {
	v := NewValidator(newMockProductRepo(), &mockLedgerRepo{})

	_, err := v.Validate(context.Background(), Request{
		Kind:  KindPurchase,
		Lines: []LineInput{{ProductID: id.New(), Quantity: 1, UnitPrice: types.MustMoney("10")}},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnknownProduct))
}

func TestValidator_MixedProblemsFoldToValidation(t *testing.T) {
	p := testProduct("A", "10")
	v := NewValidator(newMockProductRepo(p), &mockLedgerRepo{})

	// One bad quantity plus one unknown product: the folded code is generic.
	_, err := v.Validate(context.Background(), Request{
		Kind: KindPurchase,
		Lines: []LineInput{
			{ProductID: p.ID, Quantity: 0, UnitPrice: p.UnitPrice},
			{ProductID: id.New(), Quantity: 1, UnitPrice: p.UnitPrice},
		},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	problems, ok := appErr.Details["problems"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, problems, 2)
}

func TestValidator_SaleWithinStock(t *testing.T) {
	p := testProduct("A", "10")
	moves := &mockLedgerRepo{moves: []entity.StockMove{stockMove(p.ID, 5)}}
	v := NewValidator(newMockProductRepo(p), moves)

	validated, err := v.Validate(context.Background(), Request{
		Kind:  KindSale,
		Lines: []LineInput{{ProductID: p.ID, Quantity: 5, UnitPrice: p.UnitPrice}},
	})

	require.NoError(t, err)
	require.Len(t, validated.Lines, 1)
	assert.Equal(t, p.ID, validated.Lines[0].Product.ID)
}

func TestValidator_SaleOversell(t *testing.T) {
	p := testProduct("A", "10")
	moves := &mockLedgerRepo{moves: []entity.StockMove{stockMove(p.ID, 3)}}
	v := NewValidator(newMockProductRepo(p), moves)

	_, err := v.Validate(context.Background(), Request{
		Kind:  KindSale,
		Lines: []LineInput{{ProductID: p.ID, Quantity: 4, UnitPrice: p.UnitPrice}},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestValidator_OversellSplitAcrossLines(t *testing.T) {
	p := testProduct("A", "10")
	moves := &mockLedgerRepo{moves: []entity.StockMove{stockMove(p.ID, 5)}}
	v := NewValidator(newMockProductRepo(p), moves)

	// Each line alone fits in stock; the sum does not.
	_, err := v.Validate(context.Background(), Request{
		Kind: KindSale,
		Lines: []LineInput{
			{ProductID: p.ID, Quantity: 3, UnitPrice: p.UnitPrice},
			{ProductID: p.ID, Quantity: 3, UnitPrice: p.UnitPrice},
		},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	appErr, _ := apperror.AsAppError(err)
	shortages, ok := appErr.Details["products"].([]apperror.StockShortage)
	require.True(t, ok)
	require.Len(t, shortages, 1)
	assert.Equal(t, int64(6), shortages[0].Requested)
	assert.Equal(t, int64(5), shortages[0].Available)
}

func TestValidator_ReportsAllShortages(t *testing.T) {
	a := testProduct("A", "10")
	b := testProduct("B", "20")
	moves := &mockLedgerRepo{moves: []entity.StockMove{stockMove(a.ID, 1), stockMove(b.ID, 2)}}
	v := NewValidator(newMockProductRepo(a, b), moves)

	_, err := v.Validate(context.Background(), Request{
		Kind: KindSale,
		Lines: []LineInput{
			{ProductID: a.ID, Quantity: 5, UnitPrice: a.UnitPrice},
			{ProductID: b.ID, Quantity: 5, UnitPrice: b.UnitPrice},
		},
	})

	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	shortages := appErr.Details["products"].([]apperror.StockShortage)
	assert.Len(t, shortages, 2)
}

func TestValidator_SaleReturnSkipsStockCheck(t *testing.T) {
	p := testProduct("A", "10")
	v := NewValidator(newMockProductRepo(p), &mockLedgerRepo{})

	// A sale return restores stock and must pass with zero on hand.
	_, err := v.Validate(context.Background(), Request{
		Kind:     KindSale,
		IsReturn: true,
		Lines:    []LineInput{{ProductID: p.ID, Quantity: 2, UnitPrice: p.UnitPrice}},
	})

	assert.NoError(t, err)
}

func TestValidator_PurchaseReturnChecked(t *testing.T) {
	p := testProduct("A", "10")
	moves := &mockLedgerRepo{moves: []entity.StockMove{stockMove(p.ID, 1)}}
	v := NewValidator(newMockProductRepo(p), moves)

	// A purchase return removes stock and is subject to the guard.
	_, err := v.Validate(context.Background(), Request{
		Kind:     KindPurchase,
		IsReturn: true,
		Lines:    []LineInput{{ProductID: p.ID, Quantity: 2, UnitPrice: p.UnitPrice}},
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestValidated_ProductIDsStableOrder(t *testing.T) {
	a := testProduct("A", "10")
	b := testProduct("B", "20")
	moves := &mockLedgerRepo{moves: []entity.StockMove{stockMove(a.ID, 10), stockMove(b.ID, 10)}}
	v := NewValidator(newMockProductRepo(a, b), moves)

	validated, err := v.Validate(context.Background(), Request{
		Kind: KindSale,
		Lines: []LineInput{
			{ProductID: b.ID, Quantity: 1, UnitPrice: b.UnitPrice},
			{ProductID: a.ID, Quantity: 1, UnitPrice: a.UnitPrice},
			{ProductID: b.ID, Quantity: 1, UnitPrice: b.UnitPrice},
		},
	})
	require.NoError(t, err)

	ids := validated.ProductIDs()
	require.Len(t, ids, 2)
	assert.True(t, ids[0].String() < ids[1].String())
}
