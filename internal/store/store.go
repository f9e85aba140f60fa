// Package store defines the contracts for the canonical account ledger
// and the card directory, plus the domain errors both implementations
// share. The account store is the single source of truth for balances;
// the directory owns the card→accounts relation but never the Account
// records themselves.
package store

import (
	"errors"

	"github.com/swjeon2/ATM-controller/internal/models"
)

var (
	// ErrNotFound means the account or card does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadAmount means the delta or initial balance is invalid.
	ErrBadAmount = errors.New("amount must be > 0")

	// ErrInsufficient means the delta would drive a balance negative.
	ErrInsufficient = errors.New("insufficient balance")

	// ErrExists means the account or card is already enrolled.
	ErrExists = errors.New("already exists")
)

// AccountStore maintains canonical Account records keyed by identifier.
// Get must return the same record identity for repeated lookups of one
// ID so that joint accounts stay observably consistent across sessions.
// ApplyDelta must serialize concurrent callers and must never leave a
// balance negative, regardless of what the caller pre-checked.
type AccountStore interface {
	Get(accountID string) (*models.Account, error)
	ApplyDelta(accountID string, delta int64) (int64, error)
	CreateAccount(accountID string, balance int64) (*models.Account, error)
	Transactions(accountID string) ([]models.Transaction, error)
}

// CardDirectory maps card numbers to their credential hash and linked
// account IDs. Lookup of an unknown card returns ErrNotFound; the
// stored hash never leaves the record that holds it.
type CardDirectory interface {
	Lookup(cardNumber string) (*models.CardRecord, error)
	Enroll(cardNumber, pinHash string, accountIDs []string) error
	LinkAccount(cardNumber, accountID string) error
}
