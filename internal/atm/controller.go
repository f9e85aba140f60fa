// Package atm drives a single teller session through its state machine:
// IDLE → AUTHENTICATING → ACCOUNT_SELECTION → TRANSACTION_MENU, with
// every non-idle state returning to IDLE on cancellation or after a
// successful balance-mutating transaction (auto-logout). Operations are
// guarded transitions: called in the wrong state they do nothing and
// report false. The controller is synchronous and single-session; all
// cross-session serialization happens in the account store and the
// cash bin.
package atm

import (
	"github.com/sirupsen/logrus"
	"github.com/swjeon2/ATM-controller/internal/models"
	"github.com/swjeon2/ATM-controller/internal/utils"
)

// Bank is the capability the session consumes for credential and
// balance truth. Implementations must fail closed: unknown cards verify
// as false and resolve to no accounts, and UpdateBalance must apply the
// delta atomically, rejecting any result below zero.
type Bank interface {
	ValidateCard(cardNumber string) bool
	VerifyPIN(cardNumber, pin string) bool
	Accounts(cardNumber string) []*models.Account
	Balance(accountID string) (int64, error)
	UpdateBalance(accountID string, delta int64) error
}

// CashBin is the capability for physical cash truth. Dispense must
// re-verify sufficiency and decrement atomically.
type CashBin interface {
	HasEnough(amount int64) bool
	Dispense(amount int64) error
}

// Controller is one session state machine instance.
type Controller struct {
	bank Bank
	bin  CashBin
	log  *logrus.Logger

	state    State
	card     *models.Card
	accounts []*models.Account
	selected *models.Account
}

// NewController creates a controller in the idle state.
func NewController(bank Bank, bin CashBin, log *logrus.Logger) *Controller {
	c := &Controller{bank: bank, bin: bin, log: log}
	c.reset()
	return c
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.card = nil
	c.accounts = nil
	c.selected = nil
}

// State returns the current session state so the caller can render the
// matching prompt.
func (c *Controller) State() State {
	return c.state
}

// CurrentCard returns the inserted card, or nil when idle.
func (c *Controller) CurrentCard() *models.Card {
	return c.card
}

// Accounts returns the accounts resolved during the current
// authentication, in directory order.
func (c *Controller) Accounts() []*models.Account {
	return c.accounts
}

// SelectedAccountID returns the selected account's ID, or "" when no
// account is selected.
func (c *Controller) SelectedAccountID() string {
	if c.selected == nil {
		return ""
	}
	return c.selected.ID
}

// InsertCard accepts a card and moves to AUTHENTICATING. Valid only
// when idle. Cards unknown to the bank are rejected without a state
// change, so the caller learns about a bad card before asking for a
// PIN.
func (c *Controller) InsertCard(cardNumber string) bool {
	if c.state != StateIdle {
		return false
	}
	if !c.bank.ValidateCard(cardNumber) {
		c.log.Warnf("Rejected unknown card %s", utils.MaskCardNumber(cardNumber))
		return false
	}
	c.card = &models.Card{Number: cardNumber}
	c.state = StateAuthenticating
	c.log.Infof("Card inserted: %s", utils.MaskCardNumber(cardNumber))
	return true
}

// EnterPIN verifies the PIN and, on success, resolves the card's
// accounts and moves to ACCOUNT_SELECTION. On failure the session stays
// in AUTHENTICATING so the caller may retry; no attempt limit is
// enforced here. The PIN is passed through to the bank and never
// retained.
func (c *Controller) EnterPIN(pin string) bool {
	if c.state != StateAuthenticating {
		return false
	}
	if !c.bank.VerifyPIN(c.card.Number, pin) {
		return false
	}
	c.accounts = c.bank.Accounts(c.card.Number)
	c.state = StateAccountSelection
	c.log.Infof("Card %s authenticated, %d account(s) available", utils.MaskCardNumber(c.card.Number), len(c.accounts))
	return true
}

// SelectAccount binds one of the resolved accounts and moves to
// TRANSACTION_MENU. The ID must exactly match an entry resolved during
// the current authentication.
func (c *Controller) SelectAccount(accountID string) bool {
	if c.state != StateAccountSelection {
		return false
	}
	for _, a := range c.accounts {
		if a.ID == accountID {
			c.selected = a
			c.state = StateTransactionMenu
			c.log.Infof("Account selected: %s", accountID)
			return true
		}
	}
	return false
}

// Balance returns the selected account's current balance from the live
// shared record. Outside TRANSACTION_MENU it returns ErrAccessDenied.
func (c *Controller) Balance() (int64, error) {
	if c.state != StateTransactionMenu {
		return 0, ErrAccessDenied
	}
	return c.bank.Balance(c.selected.ID)
}

// Deposit credits the selected account. On success the session
// terminates immediately (auto-logout); on store rejection it stays in
// TRANSACTION_MENU with no effect.
func (c *Controller) Deposit(amount int64) bool {
	if c.state != StateTransactionMenu || amount <= 0 {
		return false
	}
	if err := c.bank.UpdateBalance(c.selected.ID, amount); err != nil {
		c.log.Warnf("Deposit of %d to %s rejected: %v", amount, c.selected.ID, err)
		return false
	}
	c.log.Infof("Deposited %d to %s, session closed", amount, c.selected.ID)
	c.EjectCard()
	return true
}

// Withdraw debits the selected account and dispenses cash. Both the
// balance and the physical stock must cover the amount before any
// mutation; either precondition failing leaves account, bin, and
// session untouched. On success the session terminates immediately.
func (c *Controller) Withdraw(amount int64) bool {
	if c.state != StateTransactionMenu || amount <= 0 {
		return false
	}

	balance, err := c.bank.Balance(c.selected.ID)
	if err != nil || balance < amount {
		return false
	}
	if !c.bin.HasEnough(amount) {
		c.log.Warnf("Withdrawal of %d from %s rejected: insufficient cash stock", amount, c.selected.ID)
		return false
	}

	if err := c.bank.UpdateBalance(c.selected.ID, -amount); err != nil {
		c.log.Warnf("Withdrawal of %d from %s rejected by store: %v", amount, c.selected.ID, err)
		return false
	}
	if err := c.bin.Dispense(amount); err != nil {
		// Stock vanished between check and dispense (another terminal
		// on the same bin). Refund the debit and keep the session open.
		if rerr := c.bank.UpdateBalance(c.selected.ID, amount); rerr != nil {
			c.log.Errorf("Failed to refund %d to %s after dispense failure: %v", amount, c.selected.ID, rerr)
		}
		c.log.Warnf("Dispense of %d failed: %v", amount, err)
		return false
	}

	c.log.Infof("Withdrew %d from %s, session closed", amount, c.selected.ID)
	c.EjectCard()
	return true
}

// EjectCard unconditionally resets the session to IDLE, discarding the
// card, the resolved accounts, and the selection.
func (c *Controller) EjectCard() {
	if c.card != nil {
		c.log.Infof("Card ejected: %s", utils.MaskCardNumber(c.card.Number))
	}
	c.reset()
}
