package model

import "time"

// PendingTransaction is a not-yet-settled movement against an account.
// Amount is signed; negative means outflow. Settling removes the row and
// applies Amount to the account's current balance.
type PendingTransaction struct {
	CreatedAt   time.Time `json:"createdAt"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ID          int64     `json:"id"`
	AccountID   int64     `json:"accountId"`
	Amount      float64   `json:"amount"`
}
