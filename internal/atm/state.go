package atm

// State is the session state tag. Field validity follows the state:
// the card is set from StateAuthenticating on, the account list from
// StateAccountSelection on, and the selection only in
// StateTransactionMenu.
type State int

const (
	StateIdle State = iota
	StateAuthenticating
	StateAccountSelection
	StateTransactionMenu
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateAccountSelection:
		return "ACCOUNT_SELECTION"
	case StateTransactionMenu:
		return "TRANSACTION_MENU"
	default:
		return "UNKNOWN"
	}
}
