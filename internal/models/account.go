package models

// Account represents a bank account reachable from an ATM card.
// Balance is in whole currency units. The account store owns every
// Account record and hands out shared references, so a balance change
// made through the store is visible to every card linked to the account.
type Account struct {
	ID      string `json:"id"`
	Balance int64  `json:"balance"`
}
