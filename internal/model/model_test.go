package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{10.005, 10.01}, // float representation puts this just above the tie
		{10.015, 10.02}, // exact tie rounds to even
		{10.025, 10.02}, // exact tie rounds down to even
		{10.004, 10.0},
		{-3.335, -3.34},
		{0, 0},
		{19.999, 20.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quantize(tt.in), "Quantize(%v)", tt.in)
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(0))
	assert.True(t, IsFinite(-12.5))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.Inf(-1)))
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2026, time.September, 5)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-09-05"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back.Time))

	var zero Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &zero))
	assert.True(t, zero.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`null`), &zero))
	assert.True(t, zero.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"05/09/2026"`), &zero))
}

func TestDateScanValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2026-09-05"))
	assert.Equal(t, "2026-09-05", d.String())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-09-05", v)

	var zero Date
	require.NoError(t, zero.Scan(nil))
	assert.True(t, zero.IsZero())
	v, err = zero.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestExpenseProgress(t *testing.T) {
	e := &FixedExpense{Amount: 100, PaidAmount: 130}
	assert.Zero(t, e.Remaining())
	assert.Equal(t, 30.0, e.Overpayment())
	assert.InDelta(t, 30.0, e.OverpaymentPercentage(), 0.001)
	assert.True(t, e.SignificantOverpayment())
	assert.Equal(t, ExpenseStatusPaid, e.StatusFor(100))
	assert.Equal(t, ExpenseStatusPending, e.StatusFor(99.99))

	partial := &FixedExpense{Amount: 100, PaidAmount: 40}
	assert.Equal(t, 60.0, partial.Remaining())
	assert.Zero(t, partial.Overpayment())
	assert.False(t, partial.SignificantOverpayment())

	free := &FixedExpense{Amount: 0, PaidAmount: 10}
	assert.Zero(t, free.OverpaymentPercentage())
}

func TestCreditCardHelpers(t *testing.T) {
	c := &CreditCard{Balance: 600, CreditLimit: 5000}
	assert.Equal(t, 4400.0, c.AvailableCredit())
	assert.False(t, c.OverLimit())

	c.Balance = 5100
	assert.True(t, c.OverLimit())
}
