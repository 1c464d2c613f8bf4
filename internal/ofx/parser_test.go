package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260820120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>9876543210
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260801
<DTEND>20260820
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260815
<TRNAMT>-42.13
<FITID>T1
<NAME>PURCHASE AUTHORIZED ON 08/15 TRADER JOES
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260816
<TRNAMT>1500.00
<FITID>T2
<NAME>DEBIT
<MEMO>Payroll deposit
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1457.87
<DTASOF>20260820
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestParseStatements(t *testing.T) {
	p := NewParser()

	pending, err := p.ParseStatements(context.Background(), strings.NewReader(sampleOFX), 7)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	first := pending[0]
	assert.Equal(t, int64(7), first.AccountID)
	assert.Equal(t, -42.13, first.Amount)
	assert.Equal(t, "Other", first.Category)
	assert.Equal(t, "TRADER JOES", first.Description)
	assert.Equal(t, 2026, first.CreatedAt.Year())

	second := pending[1]
	assert.Equal(t, 1500.0, second.Amount)
	// Generic bank phrases defer to the memo.
	assert.Equal(t, "Payroll deposit", second.Description)
}

func TestParseStatementsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseStatements(ctx, strings.NewReader(sampleOFX), 7)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStatementsRejectsGarbage(t *testing.T) {
	_, err := NewParser().ParseStatements(context.Background(), strings.NewReader("not an ofx file"), 7)
	assert.Error(t, err)
}

func TestStatementAccounts(t *testing.T) {
	accounts, err := NewParser().StatementAccounts(context.Background(), strings.NewReader(sampleOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"9876543210"}, accounts)
}

func TestPreprocess(t *testing.T) {
	p := NewParser()

	t.Run("strips leading whitespace", func(t *testing.T) {
		assert.Equal(t, "OFXHEADER:100", p.preprocess("\r\n\n  OFXHEADER:100"))
	})

	t.Run("uppercases severity", func(t *testing.T) {
		assert.Equal(t, "<SEVERITY>INFO</SEVERITY>", p.preprocess("<SEVERITY>Info</SEVERITY>"))
	})

	t.Run("closes bare tags", func(t *testing.T) {
		assert.Equal(t, "<STMTTRN>\n<FITID>1", p.preprocess("<STMTTRN\n<FITID>1"))
	})
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{
			name: "payee name wins",
			tx: ofxgo.Transaction{
				Name:  "DEBIT",
				Payee: &ofxgo.Payee{Name: "Corner Store"},
			},
			want: "Corner Store",
		},
		{
			name: "processor prefix stripped",
			tx:   ofxgo.Transaction{Name: "POS PURCHASE COFFEE HOUSE"},
			want: "COFFEE HOUSE",
		},
		{
			name: "leading date stripped",
			tx:   ofxgo.Transaction{Name: "08/15 COFFEE HOUSE"},
			want: "COFFEE HOUSE",
		},
		{
			name: "memo replaces generic name",
			tx:   ofxgo.Transaction{Name: "PAYMENT", Memo: "Rent August"},
			want: "Rent August",
		},
		{
			name: "memo ignored for specific name",
			tx:   ofxgo.Transaction{Name: "COFFEE HOUSE", Memo: "card 1234"},
			want: "COFFEE HOUSE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.tx))
		})
	}
}
