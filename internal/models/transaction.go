package models

import "time"

// Transaction kinds recorded in the journal.
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
)

// Transaction is a journal entry for one applied balance delta.
type Transaction struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Amount    int64     `json:"amount"` // negative for withdrawals
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
