package transactions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopledger/internal/core/entity"
)

func TestKind_MoveKind(t *testing.T) {
	cases := []struct {
		kind     Kind
		isReturn bool
		want     entity.MoveKind
		sign     int
	}{
		{KindPurchase, false, entity.MoveKindPurchase, 1},
		{KindPurchase, true, entity.MoveKindPurchaseReturn, -1},
		{KindSale, false, entity.MoveKindSale, -1},
		{KindSale, true, entity.MoveKindSaleReturn, 1},
		{KindAdjustment, false, entity.MoveKindAdjustment, 0},
	}

	for _, tc := range cases {
		got := tc.kind.MoveKind(tc.isReturn)
		assert.Equal(t, tc.want, got, "%s return=%v", tc.kind, tc.isReturn)
		assert.Equal(t, tc.sign, got.Direction(), "%s return=%v", tc.kind, tc.isReturn)
	}
}

func TestKind_NumberPrefix(t *testing.T) {
	assert.Equal(t, "PO", KindPurchase.NumberPrefix(false))
	assert.Equal(t, "PRN", KindPurchase.NumberPrefix(true))
	assert.Equal(t, "INV", KindSale.NumberPrefix(false))
	assert.Equal(t, "CRN", KindSale.NumberPrefix(true))
	assert.Equal(t, "ADJ", KindAdjustment.NumberPrefix(false))
}

func TestKind_IsValid(t *testing.T) {
	assert.True(t, KindSale.IsValid())
	assert.True(t, KindPurchase.IsValid())
	assert.True(t, KindAdjustment.IsValid())
	assert.False(t, Kind("transfer").IsValid())
	assert.False(t, Kind("").IsValid())
}
