package models

// Card represents the physical card bound to a session. It carries no
// credential: the PIN hash lives in the card directory only.
type Card struct {
	Number string `json:"number"`
}

// CardRecord is the directory entry for an enrolled card: the bcrypt
// hash of its PIN and the ordered list of account IDs it may access.
// One card may reference many accounts and one account may appear under
// many cards; the directory owns the relation, not the Account records.
type CardRecord struct {
	Number     string   `json:"number"`
	PINHash    string   `json:"-"` // Not serialized
	AccountIDs []string `json:"account_ids"`
}
