// Package validation enforces structural invariants before any write reaches
// persistence. Every function here is pure: results come back as data, and
// expected failure conditions never surface as errors.
package validation

import "fmt"

// Issue codes. Errors block the operation; warnings let the caller proceed.
const (
	CodeEmptyName            = "EmptyName"
	CodeInvalidType          = "InvalidType"
	CodeNonFiniteAmount      = "NonFiniteAmount"
	CodeDuplicateName        = "DuplicateName"
	CodeInvalidColor         = "InvalidColor"
	CodeInvalidPaymentSource = "InvalidPaymentSource"
	CodeAmountNotPositive    = "AmountNotPositive"
	CodeInsufficientFunds    = "InsufficientFunds"
	CodeOverpayment          = "Overpayment"
	CodeAlreadyZero          = "AlreadyZero"
	CodeMalformed            = "Malformed"
	CodeSchemaTooNew         = "SchemaTooNew"
)

// Issue is a single validation finding.
type Issue struct {
	Code    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

func issuef(code, format string, args ...any) Issue {
	return Issue{Code: code, Message: fmt.Sprintf(format, args...)}
}

func hasIssue(issues []Issue, code string) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}
