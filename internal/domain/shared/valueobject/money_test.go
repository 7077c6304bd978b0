package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyUSDFromString(t *testing.T) {
	m, err := NewMoneyUSDFromString("1234.56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", m.StringFixed(2))

	_, err = NewMoneyUSDFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyUSD(decimal.NewFromFloat(10.50))
	b := NewMoneyUSD(decimal.NewFromFloat(4.25))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "14.75", sum.StringFixed(2))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "6.25", diff.StringFixed(2))

	t.Run("currency mismatch", func(t *testing.T) {
		eur := Money{amount: decimal.NewFromInt(1), currency: EUR}
		_, err := a.Add(eur)
		assert.Error(t, err)
		_, err = a.Subtract(eur)
		assert.Error(t, err)
	})
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyUSD(decimal.NewFromInt(1))
	big := NewMoneyUSD(decimal.NewFromInt(2))

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, small.Equals(NewMoneyUSD(decimal.NewFromInt(1))))
	assert.False(t, small.Equals(big))
}

func TestMoney_Allocate(t *testing.T) {
	t.Run("splits evenly with remainder cents on leading parts", func(t *testing.T) {
		m := NewMoneyUSD(decimal.NewFromFloat(100.00))
		parts, err := m.Allocate(3)
		require.NoError(t, err)
		require.Len(t, parts, 3)

		assert.Equal(t, "33.34", parts[0].StringFixed(2))
		assert.Equal(t, "33.33", parts[1].StringFixed(2))
		assert.Equal(t, "33.33", parts[2].StringFixed(2))

		total := decimal.Zero
		for _, p := range parts {
			total = total.Add(p.Amount())
		}
		assert.True(t, total.Equal(m.Amount()), "parts must sum back to original")
	})

	t.Run("single part returns original", func(t *testing.T) {
		m := NewMoneyUSD(decimal.NewFromFloat(7.77))
		parts, err := m.Allocate(1)
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.True(t, parts[0].Equals(m))
	})

	t.Run("rejects non-positive parts", func(t *testing.T) {
		m := NewMoneyUSD(decimal.NewFromInt(10))
		_, err := m.Allocate(0)
		assert.Error(t, err)
	})
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(42.05))
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("12.34"))
	assert.Equal(t, "12.34", m.StringFixed(2))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(12.34))
}
