// Package repository is the Postgres-backed implementation of the card
// directory and account store contracts. Card numbers are stored
// AES-encrypted with a deterministic HMAC digest as the lookup key, so
// no plaintext card number is indexed at rest. Delta application runs
// in a transaction with a row lock, which is the cross-process
// serialization point for shared accounts.
package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/swjeon2/ATM-controller/internal/models"
	"github.com/swjeon2/ATM-controller/internal/store"
	"github.com/swjeon2/ATM-controller/internal/utils"
)

// Repository provides database operations
type Repository struct {
	db         *sql.DB
	hmacSecret string
	encKey     []byte
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB, hmacSecret string, encKey []byte) *Repository {
	return &Repository{db: db, hmacSecret: hmacSecret, encKey: encKey}
}

// Get retrieves the current account record by ID.
func (r *Repository) Get(accountID string) (*models.Account, error) {
	a := &models.Account{}
	query := `
		SELECT id, balance
		FROM atm.accounts
		WHERE id = $1`
	err := r.db.QueryRow(query, accountID).Scan(&a.ID, &a.Balance)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// ApplyDelta adds delta to the account balance inside a transaction
// holding a row lock, and records a journal entry. A delta that would
// leave the balance negative is rejected with no effect.
func (r *Repository) ApplyDelta(accountID string, delta int64) (int64, error) {
	if delta == 0 {
		return 0, store.ErrBadAmount
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRow(`SELECT balance FROM atm.accounts WHERE id = $1 FOR UPDATE`, accountID).
		Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock account: %w", err)
	}
	if balance+delta < 0 {
		return balance, store.ErrInsufficient
	}
	balance += delta

	if _, err := tx.Exec(`UPDATE atm.accounts SET balance = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, balance, accountID); err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}

	kind := models.TxDeposit
	if delta < 0 {
		kind = models.TxWithdrawal
	}
	if _, err := tx.Exec(`
		INSERT INTO atm.transactions (id, account_id, amount, type, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)`,
		uuid.NewString(), accountID, delta, kind); err != nil {
		return 0, fmt.Errorf("failed to record transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

// CreateAccount inserts a new account with an opening balance.
func (r *Repository) CreateAccount(accountID string, balance int64) (*models.Account, error) {
	if balance < 0 {
		return nil, store.ErrBadAmount
	}
	query := `
		INSERT INTO atm.accounts (id, balance, created_at, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO NOTHING`
	res, err := r.db.Exec(query, accountID, balance)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, store.ErrExists
	}
	return &models.Account{ID: accountID, Balance: balance}, nil
}

// Transactions retrieves the journal entries for one account, oldest
// first.
func (r *Repository) Transactions(accountID string) ([]models.Transaction, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, amount, type, created_at
		FROM atm.transactions
		WHERE account_id = $1
		ORDER BY created_at`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Amount, &tx.Type, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// Lookup retrieves the directory record for a card number. The lookup
// key is the HMAC digest of the number; the stored number itself stays
// encrypted and is not needed here.
func (r *Repository) Lookup(cardNumber string) (*models.CardRecord, error) {
	digest := utils.CardDigest(cardNumber, r.hmacSecret)

	rec := &models.CardRecord{Number: cardNumber}
	err := r.db.QueryRow(`SELECT pin_hash FROM atm.cards WHERE card_digest = $1`, digest).
		Scan(&rec.PINHash)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up card: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT account_id
		FROM atm.card_accounts
		WHERE card_digest = $1
		ORDER BY position`, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to list card accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		rec.AccountIDs = append(rec.AccountIDs, id)
	}
	return rec, rows.Err()
}

// Enroll inserts a card with its PIN hash and initial account links.
// The card number is stored encrypted alongside its lookup digest.
func (r *Repository) Enroll(cardNumber, pinHash string, accountIDs []string) error {
	digest := utils.CardDigest(cardNumber, r.hmacSecret)
	encrypted, err := utils.Encrypt(cardNumber, r.encKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt card number: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO atm.cards (card_digest, card_number_enc, pin_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (card_digest) DO NOTHING`, digest, encrypted, pinHash)
	if err != nil {
		return fmt.Errorf("failed to enroll card: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrExists
	}

	for i, id := range accountIDs {
		if _, err := tx.Exec(`
			INSERT INTO atm.card_accounts (card_digest, account_id, position)
			VALUES ($1, $2, $3)`, digest, id, i); err != nil {
			return fmt.Errorf("failed to link account %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit enrollment: %w", err)
	}
	return nil
}

// LinkAccount appends an account to a card's accessible list. Unknown
// cards and accounts yield ErrNotFound, matching the in-memory
// directory; linking twice is a no-op.
func (r *Repository) LinkAccount(cardNumber, accountID string) error {
	digest := utils.CardDigest(cardNumber, r.hmacSecret)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM atm.cards WHERE card_digest = $1)`, digest).
		Scan(&exists); err != nil {
		return fmt.Errorf("failed to check card: %w", err)
	}
	if !exists {
		return store.ErrNotFound
	}
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM atm.accounts WHERE id = $1)`, accountID).
		Scan(&exists); err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if !exists {
		return store.ErrNotFound
	}

	if _, err := tx.Exec(`
		INSERT INTO atm.card_accounts (card_digest, account_id, position)
		SELECT $1, $2, COALESCE(MAX(position), -1) + 1
		FROM atm.card_accounts
		WHERE card_digest = $1
		ON CONFLICT (card_digest, account_id) DO NOTHING`, digest, accountID); err != nil {
		return fmt.Errorf("failed to link account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link: %w", err)
	}
	return nil
}

// Compile-time checks: Repository implements both store contracts.
var (
	_ store.AccountStore  = (*Repository)(nil)
	_ store.CardDirectory = (*Repository)(nil)
)
