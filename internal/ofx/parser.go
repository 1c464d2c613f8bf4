// Package ofx imports OFX/QFX statement files as pending transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/digibook/digibook/internal/model"
)

// Parser reads OFX/QFX statement files.
type Parser struct{}

// NewParser creates an OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRegex  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes common formatting problems in real-world OFX files:
// leading blank lines, mixed-case SEVERITY values, and SGML-style tags
// missing their closing bracket.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagRegex.ReplaceAllString(content, "$1>")
	return content
}

// ParseStatements parses every bank and credit card statement in the file
// into pending transactions against the given account. Amounts keep their
// OFX sign: negative means outflow.
func (p *Parser) ParseStatements(ctx context.Context, reader io.Reader, accountID int64) ([]model.PendingTransaction, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var pending []model.PendingTransaction
	var bankStmts, cardStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		for _, tx := range stmt.BankTranList.Transactions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pending = append(pending, p.convert(tx, accountID))
		}
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		cardStmts++
		for _, tx := range stmt.BankTranList.Transactions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pending = append(pending, p.convert(tx, accountID))
		}
	}

	slog.Info("Parsed OFX file",
		"transactions", len(pending),
		"bank_statements", bankStmts,
		"card_statements", cardStmts)
	return pending, nil
}

// StatementAccounts lists the distinct statement account numbers in the
// file, so the caller can confirm which ledger account to import against.
func (p *Parser) StatementAccounts(ctx context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			accounts = append(accounts, id)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}
	return accounts, nil
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

func (p *Parser) convert(tx ofxgo.Transaction, accountID int64) model.PendingTransaction {
	amount, _ := tx.TrnAmt.Float64()
	posted := tx.DtPosted.Time
	if posted.IsZero() {
		posted = time.Now()
	}
	return model.PendingTransaction{
		AccountID: accountID,
		Amount:    model.Quantize(amount),
		// OFX carries no category information.
		Category:    "Other",
		Description: describe(tx),
		CreatedAt:   posted,
	}
}

var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// describe extracts the cleanest available description: payee name when
// present, memo when the name field is a generic bank phrase, otherwise
// the name with processor prefixes and leading MM/DD dates stripped.
func describe(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}

func genericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
