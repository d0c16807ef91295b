package ledger

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
)

// Mock objects

type mockMoveRepo struct {
	moves []entity.StockMove
}

func (m *mockMoveRepo) AppendMoves(ctx context.Context, moves []entity.StockMove) error {
	m.moves = append(m.moves, moves...)
	return nil
}

func (m *mockMoveRepo) SumByProduct(ctx context.Context, productID id.ID) (types.Quantity, error) {
	var sum types.Quantity
	for _, mv := range m.moves {
		if mv.ProductID == productID {
			sum += mv.Quantity
		}
	}
	return sum, nil
}

func (m *mockMoveRepo) SumByProducts(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error) {
	result := make(map[id.ID]types.Quantity, len(productIDs))
	for _, pid := range productIDs {
		sum, _ := m.SumByProduct(ctx, pid)
		result[pid] = sum
	}
	return result, nil
}

func (m *mockMoveRepo) SumByProductAsOf(ctx context.Context, productID id.ID, asOf time.Time) (types.Quantity, error) {
	var sum types.Quantity
	for _, mv := range m.moves {
		if mv.ProductID == productID && !mv.Period.After(asOf) {
			sum += mv.Quantity
		}
	}
	return sum, nil
}

func (m *mockMoveRepo) MovesByTransaction(ctx context.Context, transactionID id.ID) ([]entity.StockMove, error) {
	var result []entity.StockMove
	for _, mv := range m.moves {
		if mv.TransactionID == transactionID {
			result = append(result, mv)
		}
	}
	return result, nil
}

func (m *mockMoveRepo) MovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMove, error) {
	var result []entity.StockMove
	for _, mv := range m.moves {
		if mv.ProductID != productID {
			continue
		}
		if filter.Kind != nil && mv.Kind != *filter.Kind {
			continue
		}
		result = append(result, mv)
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

type mockProducts struct {
	known map[id.ID]*product.Product
}

func newMockProducts(ids ...id.ID) *mockProducts {
	m := &mockProducts{known: make(map[id.ID]*product.Product)}
	for _, pid := range ids {
		p := product.New("P", "Product", types.ZeroMoney(), types.ZeroMoney())
		p.ID = pid
		m.known[pid] = p
	}
	return m
}

func (m *mockProducts) Create(ctx context.Context, p *product.Product) error { return nil }
func (m *mockProducts) Update(ctx context.Context, p *product.Product) error { return nil }

func (m *mockProducts) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := m.known[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (m *mockProducts) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", code)
}

func (m *mockProducts) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", barcode)
}

func (m *mockProducts) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*product.Product, error) {
	result := make(map[id.ID]*product.Product)
	for _, pid := range productIDs {
		if p, ok := m.known[pid]; ok {
			result[pid] = p
		}
	}
	return result, nil
}

func (m *mockProducts) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, ok := m.known[productID]
	return ok, nil
}

func (m *mockProducts) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	return nil, nil
}

func (m *mockProducts) LockForCommit(ctx context.Context, productIDs []id.ID) error { return nil }

func move(productID id.ID, qty int64, kind entity.MoveKind, period time.Time) entity.StockMove {
	return entity.NewStockMove(id.New(), productID, types.Quantity(qty), types.MustMoney("1"), kind, period)
}

func TestCurrentStock_SumsSignedMoves(t *testing.T) {
	pid := id.New()
	now := time.Now().UTC()
	repo := &mockMoveRepo{moves: []entity.StockMove{
		move(pid, 10, entity.MoveKindPurchase, now),
		move(pid, -3, entity.MoveKindSale, now),
		move(pid, 1, entity.MoveKindSaleReturn, now),
		move(pid, -2, entity.MoveKindAdjustment, now),
	}}
	svc := NewService(repo, newMockProducts(pid))

	qty, err := svc.CurrentStock(context.Background(), pid)

	require.NoError(t, err)
	assert.Equal(t, types.Quantity(6), qty)
}

func TestCurrentStock_NoMovesIsZero(t *testing.T) {
	pid := id.New()
	svc := NewService(&mockMoveRepo{}, newMockProducts(pid))

	qty, err := svc.CurrentStock(context.Background(), pid)

	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), qty)
}

func TestCurrentStock_UnknownProduct(t *testing.T) {
	svc := NewService(&mockMoveRepo{}, newMockProducts())

	_, err := svc.CurrentStock(context.Background(), id.New())

	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCurrentStockBulk_EmptySet(t *testing.T) {
	svc := NewService(&mockMoveRepo{}, newMockProducts())

	sums, err := svc.CurrentStockBulk(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, sums)
}

func TestCurrentStockBulk_UnknownIDsAbsent(t *testing.T) {
	known := id.New()
	unknown := id.New()
	now := time.Now().UTC()
	repo := &mockMoveRepo{moves: []entity.StockMove{move(known, 4, entity.MoveKindPurchase, now)}}
	svc := NewService(repo, newMockProducts(known))

	sums, err := svc.CurrentStockBulk(context.Background(), []id.ID{known, unknown})

	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, types.Quantity(4), sums[known])
	_, present := sums[unknown]
	assert.False(t, present)
}

func TestStockAsOf_IgnoresLaterMoves(t *testing.T) {
	pid := id.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockMoveRepo{moves: []entity.StockMove{
		move(pid, 10, entity.MoveKindPurchase, base),
		move(pid, -4, entity.MoveKindSale, base.AddDate(0, 0, 5)),
	}}
	svc := NewService(repo, newMockProducts(pid))

	qty, err := svc.StockAsOf(context.Background(), pid, base.AddDate(0, 0, 1))

	require.NoError(t, err)
	assert.Equal(t, types.Quantity(10), qty)
}

func TestMovementHistory_UnknownProduct(t *testing.T) {
	svc := NewService(&mockMoveRepo{}, newMockProducts())

	_, err := svc.MovementHistory(context.Background(), id.New(), MovementFilter{})

	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMovementHistory_LimitClamped(t *testing.T) {
	pid := id.New()
	now := time.Now().UTC()
	repo := &mockMoveRepo{}
	for i := 0; i < 5; i++ {
		repo.moves = append(repo.moves, move(pid, 1, entity.MoveKindPurchase, now))
	}
	svc := NewService(repo, newMockProducts(pid))

	// Limit zero falls back to the default of 100.
	moves, err := svc.MovementHistory(context.Background(), pid, MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, moves, 5)

	moves, err = svc.MovementHistory(context.Background(), pid, MovementFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, moves, 2)
}
