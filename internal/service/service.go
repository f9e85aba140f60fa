package service

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/swjeon2/ATM-controller/internal/models"
	"github.com/swjeon2/ATM-controller/internal/store"
	"github.com/swjeon2/ATM-controller/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// ReceiptSender delivers transaction receipts. *email.Sender satisfies
// it; tests substitute a recorder.
type ReceiptSender interface {
	SendTransactionReceipt(to, accountID string, amount int64, transactionType string, balance int64) error
}

// Service implements the bank capability consumed by the ATM session:
// card validation, PIN verification, account resolution, and atomic
// balance updates. It fails closed: unknown cards verify as false and
// resolve to no accounts. The stored PIN hash and the entered PIN never
// leave the verification call.
type Service struct {
	dir       store.CardDirectory
	accounts  store.AccountStore
	log       *logrus.Logger
	receipts  ReceiptSender
	receiptTo string
}

// NewService initializes a new service
func NewService(dir store.CardDirectory, accounts store.AccountStore, log *logrus.Logger) *Service {
	return &Service{dir: dir, accounts: accounts, log: log}
}

// EnableReceipts turns on receipt delivery: every successfully applied
// delta is mailed to the given address. Delivery failures are logged
// and never fail the transaction itself.
func (s *Service) EnableReceipts(sender ReceiptSender, to string) {
	s.receipts = sender
	s.receiptTo = to
}

// ValidateCard reports whether the card number is enrolled.
func (s *Service) ValidateCard(cardNumber string) bool {
	_, err := s.dir.Lookup(cardNumber)
	return err == nil
}

// VerifyPIN checks the entered PIN against the enrolled bcrypt hash and
// returns only the boolean outcome.
func (s *Service) VerifyPIN(cardNumber, pin string) bool {
	rec, err := s.dir.Lookup(cardNumber)
	if err != nil {
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PINHash), []byte(pin)); err != nil {
		s.log.Warnf("PIN verification failed for card %s", utils.MaskCardNumber(cardNumber))
		return false
	}
	return true
}

// Accounts resolves the card's linked accounts to live store records,
// in the order they were linked. Unknown cards and dangling account IDs
// resolve to nothing.
func (s *Service) Accounts(cardNumber string) []*models.Account {
	rec, err := s.dir.Lookup(cardNumber)
	if err != nil {
		return nil
	}
	var out []*models.Account
	for _, id := range rec.AccountIDs {
		a, err := s.accounts.Get(id)
		if err != nil {
			s.log.Warnf("Card %s links missing account %s", utils.MaskCardNumber(cardNumber), id)
			continue
		}
		out = append(out, a)
	}
	return out
}

// Balance returns the current balance of an account from the store.
func (s *Service) Balance(accountID string) (int64, error) {
	a, err := s.accounts.Get(accountID)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// UpdateBalance applies delta atomically through the account store and
// mails a receipt when receipt delivery is enabled.
func (s *Service) UpdateBalance(accountID string, delta int64) error {
	balance, err := s.accounts.ApplyDelta(accountID, delta)
	if err != nil {
		return err
	}
	s.log.Infof("Applied delta %d to account %s, new balance %d", delta, accountID, balance)

	if s.receipts != nil && s.receiptTo != "" {
		kind := "Deposit"
		amount := delta
		if delta < 0 {
			kind = "Withdrawal"
			amount = -delta
		}
		if err := s.receipts.SendTransactionReceipt(s.receiptTo, accountID, amount, kind, balance); err != nil {
			s.log.Warnf("Receipt delivery failed for account %s: %v", accountID, err)
		}
	}
	return nil
}

// CreateAccount registers a new account with an opening balance.
func (s *Service) CreateAccount(accountID string, balance int64) (*models.Account, error) {
	a, err := s.accounts.CreateAccount(accountID, balance)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Account created: %s", accountID)
	return a, nil
}

// EnrollCard registers a card with a hashed PIN and its initial account
// links. The plaintext PIN is discarded after hashing.
func (s *Service) EnrollCard(cardNumber, pin string, accountIDs []string) error {
	if !utils.ValidateCardNumber(cardNumber) {
		return fmt.Errorf("invalid card number format")
	}
	if len(pin) < 4 || len(pin) > 6 {
		return fmt.Errorf("PIN must be 4 to 6 digits")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("PIN must be 4 to 6 digits")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}

	if err := s.dir.Enroll(cardNumber, string(hash), accountIDs); err != nil {
		return err
	}
	s.log.Infof("Card enrolled: %s (%d accounts)", utils.MaskCardNumber(cardNumber), len(accountIDs))
	return nil
}

// LinkAccount adds an account to a card's accessible list.
func (s *Service) LinkAccount(cardNumber, accountID string) error {
	if err := s.dir.LinkAccount(cardNumber, accountID); err != nil {
		return err
	}
	s.log.Infof("Linked account %s to card %s", accountID, utils.MaskCardNumber(cardNumber))
	return nil
}

// Transactions returns the journal entries for an account.
func (s *Service) Transactions(accountID string) ([]models.Transaction, error) {
	return s.accounts.Transactions(accountID)
}
