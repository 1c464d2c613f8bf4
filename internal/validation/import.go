package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/digibook/digibook/internal/model"
)

// requiredCollections must be present as arrays in an import payload.
var requiredCollections = []string{
	"accounts", "creditCards", "fixedExpenses", "pendingTransactions", "categories",
}

// ImportResult is the outcome of import payload validation. Snapshot is only
// set when OK is true.
type ImportResult struct {
	Snapshot *model.Snapshot
	Errors   []Issue
	OK       bool
}

// ValidateImport verifies an export payload: required collections are
// arrays, elements carry required typed fields, dates parse, numeric fields
// are finite, and the schema version is not newer than this build.
func ValidateImport(payload []byte) ImportResult {
	var res ImportResult

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&raw); err != nil {
		res.Errors = append(res.Errors, issuef(CodeMalformed, "payload is not a JSON object: %v", err))
		return res
	}

	if versionRaw, ok := raw["version"]; ok {
		var version int
		if err := json.Unmarshal(versionRaw, &version); err != nil {
			res.Errors = append(res.Errors, issuef(CodeMalformed, "version is not an integer"))
			return res
		}
		if version > model.SnapshotVersion {
			res.Errors = append(res.Errors, issuef(CodeSchemaTooNew,
				"payload version %d is newer than supported version %d", version, model.SnapshotVersion))
			return res
		}
	} else {
		res.Errors = append(res.Errors, issuef(CodeMalformed, "missing version"))
		return res
	}

	for _, name := range requiredCollections {
		coll, ok := raw[name]
		if !ok {
			res.Errors = append(res.Errors, issuef(CodeMalformed, "missing collection %q", name))
			continue
		}
		trimmed := bytes.TrimSpace(coll)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			res.Errors = append(res.Errors, issuef(CodeMalformed, "collection %q is not an array", name))
		}
	}
	if len(res.Errors) > 0 {
		return res
	}

	var snap model.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		res.Errors = append(res.Errors, issuef(CodeMalformed, "payload does not decode: %v", err))
		return res
	}

	res.Errors = append(res.Errors, checkSnapshotFields(&snap)...)
	if len(res.Errors) > 0 {
		return res
	}

	res.Snapshot = &snap
	res.OK = true
	return res
}

func checkSnapshotFields(snap *model.Snapshot) []Issue {
	var errs []Issue

	for i, a := range snap.Accounts {
		where := fmt.Sprintf("accounts[%d]", i)
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, issuef(CodeMalformed, "%s: empty name", where))
		}
		if !model.ValidAccountType(a.Type) {
			errs = append(errs, issuef(CodeMalformed, "%s: invalid type %q", where, a.Type))
		}
		if !model.IsFinite(a.CurrentBalance) {
			errs = append(errs, issuef(CodeMalformed, "%s: non-finite balance", where))
		}
	}
	for i, c := range snap.CreditCards {
		where := fmt.Sprintf("creditCards[%d]", i)
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, issuef(CodeMalformed, "%s: empty name", where))
		}
		if !model.IsFinite(c.Balance) || !model.IsFinite(c.CreditLimit) {
			errs = append(errs, issuef(CodeMalformed, "%s: non-finite amount", where))
		}
		if c.CreditLimit <= 0 {
			errs = append(errs, issuef(CodeMalformed, "%s: credit limit must be positive", where))
		}
	}
	for i, e := range snap.FixedExpenses {
		where := fmt.Sprintf("fixedExpenses[%d]", i)
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, issuef(CodeMalformed, "%s: empty name", where))
		}
		if !model.IsFinite(e.Amount) || !model.IsFinite(e.PaidAmount) {
			errs = append(errs, issuef(CodeMalformed, "%s: non-finite amount", where))
		}
		if src := ValidatePaymentSource(&e); !src.OK {
			errs = append(errs, issuef(CodeMalformed, "%s: %s", where, src.Errors[0].Message))
		}
	}
	for i, p := range snap.PendingTransactions {
		where := fmt.Sprintf("pendingTransactions[%d]", i)
		if p.AccountID == 0 {
			errs = append(errs, issuef(CodeMalformed, "%s: missing accountId", where))
		}
		if !model.IsFinite(p.Amount) {
			errs = append(errs, issuef(CodeMalformed, "%s: non-finite amount", where))
		}
	}
	for i, c := range snap.Categories {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, issuef(CodeMalformed, "categories[%d]: empty name", i))
		}
	}
	return errs
}
