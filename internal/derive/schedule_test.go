package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibook/digibook/internal/model"
)

func biweekly(last model.Date) *model.PaycheckSettings {
	return &model.PaycheckSettings{
		LastPaycheckDate: last,
		Frequency:        model.PaycheckFrequencyBiweekly,
	}
}

func TestNextPaycheck(t *testing.T) {
	settings := biweekly(model.NewDate(2026, time.August, 14))

	next, err := NextPaycheck(settings, model.NewDate(2026, time.August, 25))
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2026, time.August, 28), next)

	// A payday equal to the reference date is not "next".
	next, err = NextPaycheck(settings, model.NewDate(2026, time.August, 28))
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2026, time.September, 11), next)

	_, err = NextPaycheck(&model.PaycheckSettings{}, model.NewDate(2026, time.August, 25))
	assert.Error(t, err)
}

func TestUpcomingPaychecks(t *testing.T) {
	settings := biweekly(model.NewDate(2026, time.August, 14))

	paydays, err := UpcomingPaychecks(settings, model.NewDate(2026, time.August, 25), 3)
	require.NoError(t, err)
	assert.Equal(t, []model.Date{
		model.NewDate(2026, time.August, 28),
		model.NewDate(2026, time.September, 11),
		model.NewDate(2026, time.September, 25),
	}, paydays)
}

func TestClassifyUrgency(t *testing.T) {
	settings := biweekly(model.NewDate(2026, time.August, 14))
	today := model.NewDate(2026, time.August, 25)
	// Next paydays from today: Aug 28, Sep 11.

	due := func(d model.Date) *model.FixedExpense {
		return &model.FixedExpense{Status: model.ExpenseStatusPending, DueDate: d}
	}

	tests := []struct {
		name    string
		expense *model.FixedExpense
		want    Urgency
	}{
		{"paid wins over overdue date", &model.FixedExpense{Status: model.ExpenseStatusPaid, DueDate: model.NewDate(2026, time.August, 1)}, UrgencyPaid},
		{"past due date", due(model.NewDate(2026, time.August, 20)), UrgencyOverdue},
		{"due today is not overdue", due(today), UrgencyDueThisWeek},
		{"before next paycheck", due(model.NewDate(2026, time.August, 27)), UrgencyDueThisWeek},
		{"on next paycheck", due(model.NewDate(2026, time.August, 28)), UrgencyDueNextCheck},
		{"before second paycheck", due(model.NewDate(2026, time.September, 10)), UrgencyDueNextCheck},
		{"beyond second paycheck", due(model.NewDate(2026, time.September, 11)), UrgencyFuture},
		{"no due date", due(model.Date{}), UrgencyFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUrgency(tt.expense, settings, today))
		})
	}

	t.Run("unconfigured schedule", func(t *testing.T) {
		unconfigured := &model.PaycheckSettings{}
		assert.Equal(t, UrgencyOverdue, ClassifyUrgency(due(model.NewDate(2026, time.August, 20)), unconfigured, today))
		assert.Equal(t, UrgencyFuture, ClassifyUrgency(due(model.NewDate(2026, time.August, 27)), unconfigured, today))
	})
}
