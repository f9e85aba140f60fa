// Package ui is the text front end for a terminal. It owns no session
// state: it renders prompts off the controller's current state and
// drives the state machine through its public operations.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/swjeon2/ATM-controller/internal/atm"
)

// Console runs the interactive loop against a session controller.
type Console struct {
	atm *atm.Controller
	in  *bufio.Scanner
	out io.Writer
}

// NewConsole creates a console reading from r and writing to w.
func NewConsole(controller *atm.Controller, r io.Reader, w io.Writer) *Console {
	return &Console{atm: controller, in: bufio.NewScanner(r), out: w}
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) header(title string) {
	line := strings.Repeat("=", 40)
	c.printf("\n%s\n %s\n%s\n", line, title, line)
}

// prompt prints a prompt and reads one trimmed line. The second return
// is false when input is exhausted.
func (c *Console) prompt(msg string) (string, bool) {
	c.printf("%s", msg)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// Run executes the main loop until the user quits or input ends.
func (c *Console) Run() {
	c.header("WELCOME TO SIMPLE ATM")

	for {
		var ok bool
		switch c.atm.State() {
		case atm.StateIdle:
			ok = c.stepIdle()
		case atm.StateAuthenticating:
			ok = c.stepPIN()
		case atm.StateAccountSelection:
			ok = c.stepSelect()
		case atm.StateTransactionMenu:
			ok = c.stepMenu()
		}
		if !ok {
			c.printf("\n>> System shutting down. Goodbye.\n")
			return
		}
	}
}

func (c *Console) stepIdle() bool {
	c.printf("\n[SYSTEM] Please insert your card.\n")
	card, ok := c.prompt(">> Card Number (or 'q' to shutdown): ")
	if !ok || strings.EqualFold(card, "q") {
		return false
	}
	if c.atm.InsertCard(card) {
		c.printf(">> Card recognized.\n")
	} else {
		c.printf(">> Error: Invalid Card.\n")
	}
	return true
}

func (c *Console) stepPIN() bool {
	pin, ok := c.prompt("\n[AUTH] Enter your PIN (or 'c' to cancel): ")
	if !ok {
		return false
	}
	if strings.EqualFold(pin, "c") {
		c.atm.EjectCard()
		c.printf(">> Transaction cancelled.\n")
		return true
	}
	if c.atm.EnterPIN(pin) {
		c.printf(">> Authentication successful.\n")
	} else {
		c.printf(">> Error: Invalid PIN. Please try again.\n")
	}
	return true
}

func (c *Console) stepSelect() bool {
	accounts := c.atm.Accounts()
	c.printf("\n[SELECT] Found %d account(s) linked to this card:\n", len(accounts))
	for i, a := range accounts {
		c.printf(" %d. Account ID: %s\n", i+1, a.ID)
	}
	c.printf(" c. Cancel and Eject Card\n")

	choice, ok := c.prompt(">> Select Account ID or Number: ")
	if !ok {
		return false
	}
	if strings.EqualFold(choice, "c") {
		c.atm.EjectCard()
		return true
	}

	// Allow selecting by list index as well as by ID.
	selected := choice
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(accounts) {
		selected = accounts[n-1].ID
	}

	if c.atm.SelectAccount(selected) {
		c.printf(">> Account [%s] selected.\n", selected)
	} else {
		c.printf(">> Error: Invalid selection.\n")
	}
	return true
}

func (c *Console) stepMenu() bool {
	c.header(fmt.Sprintf("Account: %s", c.atm.SelectedAccountID()))
	c.printf(" 1. View Balance\n 2. Deposit Cash\n 3. Withdraw Cash\n 4. Cancel / Logout\n")

	choice, ok := c.prompt(">> Choose an option: ")
	if !ok {
		return false
	}

	switch choice {
	case "1":
		balance, err := c.atm.Balance()
		if errors.Is(err, atm.ErrAccessDenied) {
			c.printf(">> Error: Access denied.\n")
			return true
		}
		if err != nil {
			c.printf(">> Error: %v\n", err)
			return true
		}
		c.printf("\n[RESULT] Current Balance: $%d\n", balance)
	case "2":
		amount, ok := c.promptAmount("\n[DEPOSIT] Enter amount ($1 units): ")
		if !ok {
			return true
		}
		if c.atm.Deposit(amount) {
			c.printf(">> $%d deposited successfully.\n>> SECURITY: Auto-logging out and ejecting card.\n", amount)
		} else {
			c.printf(">> Error: Invalid amount.\n")
		}
	case "3":
		amount, ok := c.promptAmount("\n[WITHDRAW] Enter amount ($1 units): ")
		if !ok {
			return true
		}
		if c.atm.Withdraw(amount) {
			c.printf(">> $%d dispensed. Please take your cash.\n>> SECURITY: Auto-logging out and ejecting card.\n", amount)
		} else {
			c.printf(">> Error: Insufficient funds or ATM cash stock.\n")
		}
	case "4":
		c.atm.EjectCard()
		c.printf(">> Card ejected. Thank you.\n")
	}
	return true
}

func (c *Console) promptAmount(msg string) (int64, bool) {
	raw, ok := c.prompt(msg)
	if !ok {
		return 0, false
	}
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.printf(">> Error: Please enter a numeric value.\n")
		return 0, false
	}
	return amount, true
}
