package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/swjeon2/ATM-controller/internal/models"
)

// Memory is the in-memory implementation of both AccountStore and
// CardDirectory. A single mutex serializes every read and write, so a
// check-then-apply delta is atomic with respect to other sessions and
// no update on a shared account can be lost.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	cards    map[string]*models.CardRecord
	journal  []models.Transaction
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*models.Account),
		cards:    make(map[string]*models.CardRecord),
	}
}

// Get returns the shared Account record for the given ID. Callers get
// the same pointer on every lookup; they must not mutate it directly.
func (m *Memory) Get(accountID string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// ApplyDelta atomically adds delta to the account balance and records a
// journal entry. It rejects any delta that would leave the balance
// negative, even if the caller already checked sufficiency.
func (m *Memory) ApplyDelta(accountID string, delta int64) (int64, error) {
	if delta == 0 {
		return 0, ErrBadAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return 0, ErrNotFound
	}
	if a.Balance+delta < 0 {
		return a.Balance, ErrInsufficient
	}
	a.Balance += delta

	kind := models.TxDeposit
	if delta < 0 {
		kind = models.TxWithdrawal
	}
	m.journal = append(m.journal, models.Transaction{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Amount:    delta,
		Type:      kind,
		CreatedAt: time.Now(),
	})
	return a.Balance, nil
}

// CreateAccount registers a new account with a non-negative opening
// balance and returns the canonical record.
func (m *Memory) CreateAccount(accountID string, balance int64) (*models.Account, error) {
	if balance < 0 {
		return nil, ErrBadAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; ok {
		return nil, ErrExists
	}
	a := &models.Account{ID: accountID, Balance: balance}
	m.accounts[accountID] = a
	return a, nil
}

// Transactions returns a copy of the journal entries for one account.
func (m *Memory) Transactions(accountID string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; !ok {
		return nil, ErrNotFound
	}
	var out []models.Transaction
	for _, tx := range m.journal {
		if tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Lookup returns the directory record for a card number, or ErrNotFound.
// The returned record is a copy so the stored hash and account list
// cannot be modified from outside.
func (m *Memory) Lookup(cardNumber string) (*models.CardRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.cards[cardNumber]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	cp.AccountIDs = append([]string(nil), rec.AccountIDs...)
	return &cp, nil
}

// Enroll registers a card with its PIN hash and initial account links.
// Every referenced account must already exist in the store.
func (m *Memory) Enroll(cardNumber, pinHash string, accountIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[cardNumber]; ok {
		return ErrExists
	}
	for _, id := range accountIDs {
		if _, ok := m.accounts[id]; !ok {
			return ErrNotFound
		}
	}
	m.cards[cardNumber] = &models.CardRecord{
		Number:     cardNumber,
		PINHash:    pinHash,
		AccountIDs: append([]string(nil), accountIDs...),
	}
	return nil
}

// LinkAccount adds an account to a card's accessible list. Linking the
// same account twice is a no-op, so the list stays duplicate-free.
func (m *Memory) LinkAccount(cardNumber, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.cards[cardNumber]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m.accounts[accountID]; !ok {
		return ErrNotFound
	}
	for _, id := range rec.AccountIDs {
		if id == accountID {
			return nil
		}
	}
	rec.AccountIDs = append(rec.AccountIDs, accountID)
	return nil
}

// Compile-time checks: Memory implements both store contracts.
var (
	_ AccountStore  = (*Memory)(nil)
	_ CardDirectory = (*Memory)(nil)
)
