package derive

import (
	"fmt"

	"github.com/digibook/digibook/internal/model"
)

// Urgency classifies an expense's due date against the paycheck schedule.
type Urgency string

const (
	// UrgencyPaid means the expense is fully paid.
	UrgencyPaid Urgency = "paid"
	// UrgencyOverdue means the due date has passed unpaid.
	UrgencyOverdue Urgency = "overdue"
	// UrgencyDueThisWeek means the expense is due before the next paycheck.
	UrgencyDueThisWeek Urgency = "dueThisWeek"
	// UrgencyDueNextCheck means the expense is due within the paycheck after next.
	UrgencyDueNextCheck Urgency = "dueNextCheck"
	// UrgencyFuture means the expense is due beyond the next two paychecks.
	UrgencyFuture Urgency = "future"
)

const paycheckIntervalDays = 14

// NextPaycheck returns the first payday strictly after the given date.
// The settings must be configured with a biweekly frequency.
func NextPaycheck(settings *model.PaycheckSettings, after model.Date) (model.Date, error) {
	if !settings.Configured() {
		return model.Date{}, fmt.Errorf("paycheck schedule not configured")
	}
	payday := settings.LastPaycheckDate
	for !payday.After(after.Time) {
		payday = payday.AddDays(paycheckIntervalDays)
	}
	return payday, nil
}

// UpcomingPaychecks returns the next n paydays strictly after the given date.
func UpcomingPaychecks(settings *model.PaycheckSettings, after model.Date, n int) ([]model.Date, error) {
	first, err := NextPaycheck(settings, after)
	if err != nil {
		return nil, err
	}
	out := make([]model.Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, first.AddDays(i*paycheckIntervalDays))
	}
	return out, nil
}

// ClassifyUrgency buckets an expense by its due date relative to today and
// the paycheck series. Paid expenses are always Paid regardless of date.
// Without a configured schedule only Paid and Overdue are distinguished;
// everything else is Future.
func ClassifyUrgency(expense *model.FixedExpense, settings *model.PaycheckSettings, today model.Date) Urgency {
	if expense.Status == model.ExpenseStatusPaid {
		return UrgencyPaid
	}
	due := expense.DueDate
	if due.IsZero() {
		return UrgencyFuture
	}
	if due.Before(today.Time) {
		return UrgencyOverdue
	}

	next, err := NextPaycheck(settings, today)
	if err != nil {
		return UrgencyFuture
	}
	if due.Before(next.Time) {
		return UrgencyDueThisWeek
	}
	if due.Before(next.AddDays(paycheckIntervalDays).Time) {
		return UrgencyDueNextCheck
	}
	return UrgencyFuture
}
