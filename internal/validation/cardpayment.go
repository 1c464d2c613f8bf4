package validation

import (
	"github.com/digibook/digibook/internal/model"
)

// SuggestionKind labels one payment suggestion.
type SuggestionKind string

const (
	// SuggestionMinimum is the card's minimum payment.
	SuggestionMinimum SuggestionKind = "Minimum"
	// SuggestionSuggested is min(2x minimum, debt, available funds).
	SuggestionSuggested SuggestionKind = "Suggested"
	// SuggestionFull pays off the whole balance.
	SuggestionFull SuggestionKind = "Full"
	// SuggestionAffordable is everything the funding account can spare.
	SuggestionAffordable SuggestionKind = "Affordable"
)

// Suggestion is one proposed payment amount.
type Suggestion struct {
	Kind   SuggestionKind
	Amount float64
}

// CardPaymentInfo summarizes the entities involved in a card payment check.
type CardPaymentInfo struct {
	Debt      float64
	Available float64
	Minimum   float64
	Surplus   float64
}

// CardPaymentResult is the outcome of validating a credit card payment
// amount. Warnings do not block the payment.
type CardPaymentResult struct {
	Info        CardPaymentInfo
	Errors      []Issue
	Warnings    []Issue
	Suggestions []Suggestion
	OK          bool
}

// ValidateCreditCardPaymentAmount checks a proposed payment from funding
// against target. Errors block; warnings (overpaying the card, or paying a
// card already at zero) are advisory. Suggestions are ordered and pruned to
// the strictly useful ones.
func ValidateCreditCardPaymentAmount(funding *model.Account, target *model.CreditCard, amount float64) CardPaymentResult {
	res := CardPaymentResult{
		Info: CardPaymentInfo{
			Debt:      target.Balance,
			Available: funding.CurrentBalance,
			Minimum:   target.MinimumPayment,
		},
	}

	if !model.IsFinite(amount) || amount <= 0 {
		res.Errors = append(res.Errors, issuef(CodeAmountNotPositive, "payment amount must be positive"))
	}
	if amount > funding.CurrentBalance {
		res.Errors = append(res.Errors, issuef(CodeInsufficientFunds,
			"payment %.2f exceeds available funds %.2f", amount, funding.CurrentBalance))
	}

	if target.Balance <= 0 {
		res.Warnings = append(res.Warnings, issuef(CodeAlreadyZero,
			"card balance is already %.2f", target.Balance))
	} else if amount > target.Balance {
		res.Info.Surplus = model.Quantize(amount - target.Balance)
		res.Warnings = append(res.Warnings, issuef(CodeOverpayment,
			"payment exceeds card balance by %.2f", res.Info.Surplus))
	}

	res.Suggestions = paymentSuggestions(funding, target)
	res.OK = len(res.Errors) == 0
	return res
}

// paymentSuggestions builds the ordered Minimum / Suggested / Full /
// Affordable list, dropping entries that are unaffordable, non-positive, or
// duplicates of an earlier suggestion.
func paymentSuggestions(funding *model.Account, target *model.CreditCard) []Suggestion {
	debt := target.Balance
	available := funding.CurrentBalance
	minimum := target.MinimumPayment
	if debt <= 0 || available <= 0 {
		return nil
	}

	candidates := []Suggestion{
		{Kind: SuggestionMinimum, Amount: min(minimum, debt)},
		{Kind: SuggestionSuggested, Amount: min(2*minimum, debt, available)},
		{Kind: SuggestionFull, Amount: debt},
		{Kind: SuggestionAffordable, Amount: min(available, debt)},
	}

	var out []Suggestion
	seen := make(map[float64]bool)
	for _, c := range candidates {
		amount := model.Quantize(c.Amount)
		if amount <= 0 || amount > available || seen[amount] {
			continue
		}
		if c.Kind == SuggestionMinimum && minimum > available {
			continue
		}
		seen[amount] = true
		out = append(out, Suggestion{Kind: c.Kind, Amount: amount})
	}
	return out
}
