package model

import "time"

// AuditKind identifies the class of state change an audit record describes.
type AuditKind string

const (
	// AuditExpensePayment records a payment applied against an expense.
	AuditExpensePayment AuditKind = "expense_payment"
	// AuditPendingSettled records a pending transaction settlement.
	AuditPendingSettled AuditKind = "pending_settled"
	// AuditRestore records a backup restore.
	AuditRestore AuditKind = "restore"
)

// AuditParticipant captures one entity's balance movement within an audited
// operation.
type AuditParticipant struct {
	Entity   string  `json:"entity"`
	EntityID int64   `json:"entityId"`
	Before   float64 `json:"before"`
	After    float64 `json:"after"`
}

// AuditRecord is an immutable append-only description of a state-changing
// event. It exists for explainability, not reconstruction.
type AuditRecord struct {
	CreatedAt    time.Time          `json:"createdAt"`
	ID           string             `json:"id"`
	Kind         AuditKind          `json:"kind"`
	Participants []AuditParticipant `json:"participants"`
	ExpenseID    int64              `json:"expenseId,omitempty"`
	Before       float64            `json:"before"`
	After        float64            `json:"after"`
	Delta        float64            `json:"delta"`
}
