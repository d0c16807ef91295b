package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_Sign(t *testing.T) {
	assert.True(t, Quantity(0).IsZero())
	assert.True(t, Quantity(5).IsPositive())
	assert.True(t, Quantity(-5).IsNegative())
	assert.False(t, Quantity(0).IsPositive())
	assert.False(t, Quantity(0).IsNegative())
}

func TestQuantity_NegAbs(t *testing.T) {
	assert.Equal(t, Quantity(-5), Quantity(5).Neg())
	assert.Equal(t, Quantity(5), Quantity(-5).Neg())
	assert.Equal(t, Quantity(5), Quantity(-5).Abs())
	assert.Equal(t, Quantity(5), Quantity(5).Abs())
}

func TestQuantity_Decimal(t *testing.T) {
	d := Quantity(42).Decimal()
	assert.Equal(t, int64(42), d.IntPart())
}

func TestMoney_FromString(t *testing.T) {
	m, err := NewMoneyFromString("19.99")
	require.NoError(t, err)
	assert.True(t, m.Equal(MustMoney("19.99")))

	_, err = NewMoneyFromString("not-a-number")
	assert.Error(t, err)
}

func TestMustMoney_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustMoney("abc") })
}

func TestMoney_Arithmetic(t *testing.T) {
	// Decimal arithmetic must be exact where float64 is not.
	sum := MustMoney("0.1").Add(MustMoney("0.2"))
	assert.True(t, sum.Equal(MustMoney("0.3")))

	tax := MustMoney("0.99").Mul(MustMoney("19")).Div(MustMoney("100")).Round(2)
	assert.True(t, tax.Equal(MustMoney("0.19")))
}
