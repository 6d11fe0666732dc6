package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), KES)
		require.NoError(t, err)
		assert.Equal(t, KES, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyKES(t *testing.T) {
	m := NewMoneyKES(decimal.NewFromInt(1500))
	assert.Equal(t, KES, m.Currency())
	assert.Equal(t, int64(1500), m.Amount().IntPart())

	fromString, err := NewMoneyKESFromString("1500.75")
	require.NoError(t, err)
	assert.True(t, fromString.Amount().Equal(decimal.NewFromFloat(1500.75)))

	_, err = NewMoneyKESFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("adds amounts in the same currency", func(t *testing.T) {
		a := NewMoneyKES(decimal.NewFromInt(400))
		b := NewMoneyKES(decimal.NewFromInt(600))

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("refuses to mix currencies", func(t *testing.T) {
		a := NewMoneyKES(decimal.NewFromInt(400))
		b, err := NewMoney(decimal.NewFromInt(10), USD)
		require.NoError(t, err)

		_, err = a.Add(b)
		assert.Error(t, err)
		_, err = a.Subtract(b)
		assert.Error(t, err)
		_, err = a.GreaterThanOrEqual(b)
		assert.Error(t, err)
	})

	t.Run("subtract and multiply", func(t *testing.T) {
		a := NewMoneyKES(decimal.NewFromInt(1000))
		b := NewMoneyKES(decimal.NewFromInt(250))

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(750)))

		tripled := b.Multiply(decimal.NewFromInt(3))
		assert.True(t, tripled.Amount().Equal(decimal.NewFromInt(750)))
	})
}

func TestMoney_Comparisons(t *testing.T) {
	a := NewMoneyKES(decimal.NewFromInt(100))
	b := NewMoneyKES(decimal.NewFromInt(100))
	c := NewMoneyKES(decimal.NewFromInt(50))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))

	ok, err := a.GreaterThanOrEqual(c)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, ZeroKES().IsZero())
	assert.True(t, a.IsPositive())
	assert.True(t, ZeroKES().MustAdd(a.Multiply(decimal.NewFromInt(-1))).IsNegative())
}

func TestMoney_String(t *testing.T) {
	m := NewMoneyKES(decimal.NewFromFloat(1500.5))
	assert.Equal(t, "1500.50 KES", m.String())
}

func TestMoney_MarshalJSON(t *testing.T) {
	m := NewMoneyKES(decimal.NewFromFloat(99.99))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"99.99","currency":"KES"}`, string(data))
}
