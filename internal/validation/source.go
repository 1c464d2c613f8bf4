package validation

import (
	"github.com/digibook/digibook/internal/model"
)

// SourceResult is the outcome of payment source validation.
type SourceResult struct {
	Errors []Issue
	OK     bool
}

// ValidatePaymentSource checks the structural rules of the PaymentSource
// union against the expense's category:
//
//   - a source must be present;
//   - a regular expense carries exactly one of accountId or creditCardId;
//   - a Credit Card Payment expense must use the creditCardPayment kind with
//     both a funding account and a target card, and nothing else;
//   - the creditCardPayment kind is only legal on Credit Card Payment
//     expenses.
func ValidatePaymentSource(expense *model.FixedExpense) SourceResult {
	var errs []Issue
	src := expense.Source
	isCardPayment := expense.Category == model.CategoryCreditCardPayment

	switch src.Kind {
	case model.SourceAccount:
		if isCardPayment {
			errs = append(errs, issuef(CodeInvalidPaymentSource,
				"Credit Card Payment expenses require a creditCardPayment source"))
		}
		if src.AccountID == 0 {
			errs = append(errs, issuef(CodeInvalidPaymentSource, "account source missing accountId"))
		}
		if src.CreditCardID != 0 {
			errs = append(errs, issuef(CodeInvalidPaymentSource,
				"expense carries both accountId and creditCardId"))
		}
	case model.SourceCreditCard:
		if isCardPayment {
			errs = append(errs, issuef(CodeInvalidPaymentSource,
				"Credit Card Payment expenses cannot be charged to a card"))
		}
		if src.CreditCardID == 0 {
			errs = append(errs, issuef(CodeInvalidPaymentSource, "creditCard source missing creditCardId"))
		}
		if src.AccountID != 0 {
			errs = append(errs, issuef(CodeInvalidPaymentSource,
				"expense carries both accountId and creditCardId"))
		}
	case model.SourceCreditCardPayment:
		if !isCardPayment {
			errs = append(errs, issuef(CodeInvalidPaymentSource,
				"creditCardPayment source requires category %q", model.CategoryCreditCardPayment))
		}
		if src.AccountID == 0 {
			errs = append(errs, issuef(CodeInvalidPaymentSource, "creditCardPayment source missing funding accountId"))
		}
		if src.TargetCreditCardID == 0 {
			errs = append(errs, issuef(CodeInvalidPaymentSource, "creditCardPayment source missing targetCreditCardId"))
		}
		if src.CreditCardID != 0 {
			errs = append(errs, issuef(CodeInvalidPaymentSource,
				"creditCardPayment source cannot carry creditCardId"))
		}
	default:
		errs = append(errs, issuef(CodeInvalidPaymentSource, "no payment source present"))
	}

	if src.Kind != model.SourceCreditCardPayment && src.TargetCreditCardID != 0 {
		errs = append(errs, issuef(CodeInvalidPaymentSource,
			"targetCreditCardId is only valid on creditCardPayment sources"))
	}

	return SourceResult{Errors: errs, OK: len(errs) == 0}
}
