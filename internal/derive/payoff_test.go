package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibook/digibook/internal/model"
)

func TestCalculateDebtPayoff(t *testing.T) {
	today := model.NewDate(2026, time.August, 25)

	t.Run("interest-free payoff", func(t *testing.T) {
		res := CalculateDebtPayoff(1000, 100, 0, today)
		require.True(t, res.Success)
		assert.Equal(t, 10, res.Months)
		assert.Zero(t, res.TotalInterest)
		assert.Equal(t, 1000.0, res.TotalCost)
		assert.Equal(t, today.AddMonths(10), res.PayoffDate)
	})

	t.Run("interest accrues", func(t *testing.T) {
		// 12% APR is 1% per month: month one accrues $10 on $1000.
		res := CalculateDebtPayoff(1000, 500, 12, today)
		require.True(t, res.Success)
		assert.Equal(t, 3, res.Months)
		assert.Greater(t, res.TotalInterest, 10.0)
		assert.Equal(t, model.Quantize(1000+res.TotalInterest), res.TotalCost)
	})

	t.Run("payment below monthly interest", func(t *testing.T) {
		// 24.99% APR on $5000 accrues about $104 the first month.
		res := CalculateDebtPayoff(5000, 50, 24.99, today)
		assert.False(t, res.Success)
		assert.Equal(t, PaymentBelowInterest, res.Reason)
	})

	t.Run("payoff exceeds fifty years", func(t *testing.T) {
		// $100 of the payment goes to interest in month one, so the balance
		// shrinks by pennies; the amortization needs about 625 months.
		res := CalculateDebtPayoff(10000, 100.20, 12, today)
		assert.False(t, res.Success)
		assert.Equal(t, PayoffTooLong, res.Reason)
	})

	t.Run("no balance", func(t *testing.T) {
		res := CalculateDebtPayoff(0, 100, 12, today)
		require.True(t, res.Success)
		assert.Zero(t, res.Months)
		assert.Equal(t, today, res.PayoffDate)
	})

	t.Run("single payment covers balance", func(t *testing.T) {
		res := CalculateDebtPayoff(80, 500, 18, today)
		require.True(t, res.Success)
		assert.Equal(t, 1, res.Months)
	})
}

func TestMemoPayoff(t *testing.T) {
	bus := NewBus()
	memo, err := NewMemo(bus)
	require.NoError(t, err)
	defer memo.Close()

	today := model.NewDate(2026, time.August, 25)
	direct := CalculateDebtPayoff(1000, 100, 12, today)

	first := memo.Payoff(1000, 100, 12, today)
	assert.Equal(t, direct, first)

	// Repeated calls and calls after invalidation agree with the direct
	// computation.
	assert.Equal(t, direct, memo.Payoff(1000, 100, 12, today))
	bus.Publish("payment_applied", nil)
	assert.Equal(t, direct, memo.Payoff(1000, 100, 12, today))

	other := memo.Payoff(1000, 50, 12, today)
	assert.NotEqual(t, direct.Months, other.Months)
}
