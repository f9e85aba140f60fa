// Package cashbin tracks the physically dispensable cash in a terminal.
// It is the authority on cash truth, separate from account balances: a
// withdrawal needs both a sufficient balance and sufficient stock.
package cashbin

import (
	"errors"
	"sync"
)

// ErrInsufficientStock means the bin cannot cover the requested amount.
var ErrInsufficientStock = errors.New("insufficient cash stock")

// ErrBadAmount means the requested amount is not positive.
var ErrBadAmount = errors.New("amount must be > 0")

// Bin holds dispensable units. A mutex serializes the check-then-
// decrement sequence so concurrent sessions can never over-dispense.
type Bin struct {
	mu    sync.Mutex
	stock int64
}

// NewBin creates a bin with the given initial stock. Negative stock is
// clamped to zero.
func NewBin(stock int64) *Bin {
	if stock < 0 {
		stock = 0
	}
	return &Bin{stock: stock}
}

// HasEnough reports whether the bin currently covers amount.
func (b *Bin) HasEnough(amount int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return amount > 0 && b.stock >= amount
}

// Dispense re-verifies sufficiency and atomically decrements the stock.
// The stock never goes below zero and never pays out more than checked.
func (b *Bin) Dispense(amount int64) error {
	if amount <= 0 {
		return ErrBadAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stock < amount {
		return ErrInsufficientStock
	}
	b.stock -= amount
	return nil
}

// Load adds amount to the stock (refill by an operator).
func (b *Bin) Load(amount int64) error {
	if amount <= 0 {
		return ErrBadAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stock += amount
	return nil
}

// Stock returns the current dispensable amount.
func (b *Bin) Stock() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stock
}
