package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibook/digibook/internal/model"
)

func TestBudgetVsActual(t *testing.T) {
	expenses := []model.FixedExpense{
		{Name: "Rent", Amount: 100, PaidAmount: 100},
		{Name: "Power", Amount: 50, PaidAmount: 75},
		{Name: "Water", Amount: 200, PaidAmount: 0},
	}

	s := BudgetVsActual(expenses)
	assert.Equal(t, 350.0, s.TotalBudget)
	assert.Equal(t, 175.0, s.TotalActual)
	assert.Equal(t, 25.0, s.TotalOverpayment)
	assert.InDelta(t, 50.0, s.BudgetAccuracy, 0.001)

	empty := BudgetVsActual(nil)
	assert.Zero(t, empty.TotalBudget)
	assert.Zero(t, empty.BudgetAccuracy)
}

func TestOverpaymentByCategory(t *testing.T) {
	expenses := []model.FixedExpense{
		{Name: "Rent", Category: "Housing", Amount: 100, PaidAmount: 100},
		{Name: "Internet", Category: "Housing", Amount: 60, PaidAmount: 20},
		{Name: "Power", Category: "Utilities", Amount: 50, PaidAmount: 75},
		{Name: "Water", Category: "Utilities", Amount: 50, PaidAmount: 55},
	}

	out := OverpaymentByCategory(expenses)
	require.Len(t, out, 2)

	housing := out[0]
	assert.Equal(t, "Housing", housing.Category)
	assert.Zero(t, housing.Count)
	assert.Zero(t, housing.TotalOverpayment)
	// An underpaid category never reports a negative percentage.
	assert.Zero(t, housing.OverpaymentPercentage)

	utilities := out[1]
	assert.Equal(t, "Utilities", utilities.Category)
	assert.Equal(t, 2, utilities.Count)
	// Only Power exceeds its budget by more than 20%.
	assert.Equal(t, 1, utilities.SignificantCount)
	assert.Equal(t, 100.0, utilities.TotalBudget)
	assert.Equal(t, 130.0, utilities.TotalActual)
	assert.Equal(t, 30.0, utilities.TotalOverpayment)
	assert.InDelta(t, 30.0, utilities.OverpaymentPercentage, 0.001)
}
