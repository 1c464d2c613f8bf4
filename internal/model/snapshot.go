package model

import "time"

// SnapshotVersion is the current export/backup schema version.
const SnapshotVersion = 1

// Snapshot is a complete copy of the ledger's state, used by export,
// import, and backups. Field order is the canonical JSON layout; the backup
// checksum is computed over the standard-library marshaling of this struct.
type Snapshot struct {
	ExportedAt          time.Time            `json:"exportedAt"`
	PaycheckSettings    *PaycheckSettings    `json:"paycheckSettings,omitempty"`
	Accounts            []Account            `json:"accounts"`
	CreditCards         []CreditCard         `json:"creditCards"`
	FixedExpenses       []FixedExpense       `json:"fixedExpenses"`
	PendingTransactions []PendingTransaction `json:"pendingTransactions"`
	Categories          []Category           `json:"categories"`
	UserPreferences     []UserPreference     `json:"userPreferences"`
	AuditLogs           []AuditRecord        `json:"auditLogs"`
	Version             int                  `json:"version"`
}
