package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/digibook/digibook/internal/model"
	"github.com/digibook/digibook/internal/service"
)

func TestSortExpenses(t *testing.T) {
	expenses := []model.FixedExpense{
		{Name: "Zeta", DueDate: model.Date{}},
		{Name: "Rent", DueDate: model.NewDate(2026, time.September, 1)},
		{Name: "Alpha", DueDate: model.Date{}},
		{Name: "Power", DueDate: model.NewDate(2026, time.August, 28)},
		{Name: "Gym", DueDate: model.NewDate(2026, time.August, 28)},
	}

	sorted := SortExpenses(expenses)
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.Name
	}
	// Dated expenses first in due order with name tiebreak; undated last,
	// sorted by name.
	assert.Equal(t, []string{"Gym", "Power", "Rent", "Alpha", "Zeta"}, names)
}

func TestFilterExpenses(t *testing.T) {
	today := model.NewDate(2026, time.August, 25)
	expenses := []model.FixedExpense{
		{
			Name: "Rent", Category: "Housing", Status: model.ExpenseStatusPending,
			DueDate: model.NewDate(2026, time.August, 20),
			Source:  model.PaymentSource{Kind: model.SourceAccount, AccountID: 1},
		},
		{
			Name: "Power", Category: "Utilities", Status: model.ExpenseStatusPaid,
			DueDate: model.NewDate(2026, time.August, 15),
			Source:  model.PaymentSource{Kind: model.SourceAccount, AccountID: 1},
		},
		{
			Name: "Netflix", Category: "Subscriptions", Status: model.ExpenseStatusPending,
			DueDate: model.NewDate(2026, time.September, 3),
			Source:  model.PaymentSource{Kind: model.SourceCreditCard, CreditCardID: 7},
		},
	}

	names := func(out []model.FixedExpense) []string {
		res := make([]string, len(out))
		for i, e := range out {
			res[i] = e.Name
		}
		return res
	}

	tests := []struct {
		name   string
		filter service.ExpenseFilter
		want   []string
	}{
		{"no filter", service.ExpenseFilter{}, []string{"Rent", "Power", "Netflix"}},
		{"category is case-insensitive", service.ExpenseFilter{Category: "housing"}, []string{"Rent"}},
		{"paid only", service.ExpenseFilter{Status: StatusFilterPaid}, []string{"Power"}},
		{"unpaid only", service.ExpenseFilter{Status: StatusFilterUnpaid}, []string{"Rent", "Netflix"}},
		{"overdue excludes paid", service.ExpenseFilter{Status: StatusFilterOverdue}, []string{"Rent"}},
		{"by funding account", service.ExpenseFilter{AccountID: 1}, []string{"Rent", "Power"}},
		{"search matches category", service.ExpenseFilter{Search: "subscri"}, []string{"Netflix"}},
		{"filters compose", service.ExpenseFilter{Status: StatusFilterUnpaid, AccountID: 1}, []string{"Rent"}},
		{"unknown status matches nothing", service.ExpenseFilter{Status: "weird"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterExpenses(expenses, tt.filter, today)))
		})
	}
}
