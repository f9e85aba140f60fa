package repository

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swjeon2/ATM-controller/internal/store"
)

// newTestRepository connects to the database named by TEST_DB_CONN.
// The schema from migrations/001_init.sql must be applied. Tests are
// skipped when the variable is unset so the suite stays self-contained.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	conn := os.Getenv("TEST_DB_CONN")
	if conn == "" {
		t.Skip("TEST_DB_CONN not set")
	}
	db, err := sql.Open("postgres", conn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Ping())

	return NewRepository(db, "test-hmac-secret", []byte("0123456789abcdef0123456789abcdef"))
}

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

func TestLinkAccountContract(t *testing.T) {
	r := newTestRepository(t)

	// The repository keys cards by digest, so any unique string works
	// as a card number here; format checks live in the service.
	card := uniqueID("card")
	accountID := uniqueID("acct")
	otherID := uniqueID("acct")

	_, err := r.CreateAccount(accountID, 100)
	require.NoError(t, err)
	_, err = r.CreateAccount(otherID, 0)
	require.NoError(t, err)

	// Unknown card: ErrNotFound, same as the in-memory directory.
	assert.ErrorIs(t, r.LinkAccount(uniqueID("card"), accountID), store.ErrNotFound)

	require.NoError(t, r.Enroll(card, "hash", []string{accountID}))

	// Unknown account: ErrNotFound.
	assert.ErrorIs(t, r.LinkAccount(card, uniqueID("missing")), store.ErrNotFound)

	require.NoError(t, r.LinkAccount(card, otherID))
	// Linking twice stays duplicate-free.
	require.NoError(t, r.LinkAccount(card, otherID))

	rec, err := r.Lookup(card)
	require.NoError(t, err)
	assert.Equal(t, []string{accountID, otherID}, rec.AccountIDs)
}

func TestApplyDeltaContract(t *testing.T) {
	r := newTestRepository(t)

	accountID := uniqueID("acct")
	_, err := r.CreateAccount(accountID, 100)
	require.NoError(t, err)

	balance, err := r.ApplyDelta(accountID, -60)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)

	_, err = r.ApplyDelta(accountID, -41)
	assert.ErrorIs(t, err, store.ErrInsufficient)

	_, err = r.ApplyDelta(uniqueID("missing"), 10)
	assert.ErrorIs(t, err, store.ErrNotFound)

	txs, err := r.Transactions(accountID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(-60), txs[0].Amount)
}
