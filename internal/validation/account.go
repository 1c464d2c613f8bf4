package validation

import (
	"strings"

	"github.com/digibook/digibook/internal/model"
)

// AccountResult is the outcome of account validation. Sanitized carries the
// cleaned-up input and is only meaningful when OK is true.
type AccountResult struct {
	Sanitized model.Account
	Errors    []Issue
	OK        bool
}

// ValidateAccount trims the name, rejects empty names and non-finite
// balances, and normalizes the type to the allowed enum.
func ValidateAccount(input model.Account) AccountResult {
	var errs []Issue

	sanitized := input
	sanitized.Name = strings.TrimSpace(input.Name)
	if sanitized.Name == "" {
		errs = append(errs, issuef(CodeEmptyName, "account name cannot be empty"))
	}

	switch model.AccountType(strings.ToLower(strings.TrimSpace(string(input.Type)))) {
	case model.AccountTypeChecking:
		sanitized.Type = model.AccountTypeChecking
	case model.AccountTypeSavings:
		sanitized.Type = model.AccountTypeSavings
	case "":
		sanitized.Type = model.AccountTypeChecking
	default:
		errs = append(errs, issuef(CodeInvalidType, "unknown account type %q", input.Type))
	}

	if !model.IsFinite(input.CurrentBalance) {
		errs = append(errs, issuef(CodeNonFiniteAmount, "balance must be a finite number"))
	} else {
		sanitized.CurrentBalance = model.Quantize(input.CurrentBalance)
	}

	return AccountResult{Sanitized: sanitized, Errors: errs, OK: len(errs) == 0}
}
