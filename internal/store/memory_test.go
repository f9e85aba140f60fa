package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swjeon2/ATM-controller/internal/models"
)

func TestCreateAndGet(t *testing.T) {
	m := NewMemory()

	a, err := m.CreateAccount("A1", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), a.Balance)

	_, err = m.CreateAccount("A1", 0)
	assert.ErrorIs(t, err, ErrExists)

	_, err = m.CreateAccount("A2", -1)
	assert.ErrorIs(t, err, ErrBadAmount)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReturnsSharedIdentity(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateAccount("A1", 100)
	require.NoError(t, err)

	first, err := m.Get("A1")
	require.NoError(t, err)
	second, err := m.Get("A1")
	require.NoError(t, err)

	// Same record identity: a delta applied through the store is
	// visible through every previously handed-out reference.
	assert.Same(t, first, second)

	_, err = m.ApplyDelta("A1", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(150), first.Balance)
}

func TestApplyDelta(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateAccount("A1", 100)
	require.NoError(t, err)

	balance, err := m.ApplyDelta("A1", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)

	balance, err = m.ApplyDelta("A1", -150)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	_, err = m.ApplyDelta("A1", -1)
	assert.ErrorIs(t, err, ErrInsufficient)

	_, err = m.ApplyDelta("A1", 0)
	assert.ErrorIs(t, err, ErrBadAmount)

	_, err = m.ApplyDelta("missing", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournal(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateAccount("A1", 100)
	require.NoError(t, err)
	_, err = m.CreateAccount("A2", 0)
	require.NoError(t, err)

	_, err = m.ApplyDelta("A1", 200)
	require.NoError(t, err)
	_, err = m.ApplyDelta("A1", -50)
	require.NoError(t, err)
	_, err = m.ApplyDelta("A2", 10)
	require.NoError(t, err)

	txs, err := m.Transactions("A1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, models.TxDeposit, txs[0].Type)
	assert.Equal(t, int64(200), txs[0].Amount)
	assert.Equal(t, models.TxWithdrawal, txs[1].Type)
	assert.Equal(t, int64(-50), txs[1].Amount)
	assert.NotEmpty(t, txs[0].ID)
	assert.False(t, txs[0].CreatedAt.IsZero())

	_, err = m.Transactions("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentDeltasNoLostUpdate(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateAccount("A1", 0)
	require.NoError(t, err)

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := m.ApplyDelta("A1", 1); err != nil {
				t.Errorf("deposit err: %v", err)
			}
		}()
	}
	wg.Wait()

	a, err := m.Get("A1")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), a.Balance)
}

func TestConcurrentMixedDeltasNeverNegative(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateAccount("A1", 100)
	require.NoError(t, err)

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = m.ApplyDelta("A1", 1)
		}()
		go func() {
			defer wg.Done()
			// May fail with ErrInsufficient; must never go negative.
			_, _ = m.ApplyDelta("A1", -2)
		}()
	}
	wg.Wait()

	a, err := m.Get("A1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, a.Balance, int64(0))
}

func TestEnrollAndLookup(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateAccount("A1", 0)
	require.NoError(t, err)
	_, err = m.CreateAccount("A2", 0)
	require.NoError(t, err)

	require.NoError(t, m.Enroll("card-1", "hash", []string{"A1", "A2"}))

	assert.ErrorIs(t, m.Enroll("card-1", "hash", nil), ErrExists)
	assert.ErrorIs(t, m.Enroll("card-2", "hash", []string{"missing"}), ErrNotFound)

	rec, err := m.Lookup("card-1")
	require.NoError(t, err)
	assert.Equal(t, "hash", rec.PINHash)
	assert.Equal(t, []string{"A1", "A2"}, rec.AccountIDs)

	// Lookup hands out a copy; mutating it must not touch the directory.
	rec.AccountIDs[0] = "tampered"
	rec.PINHash = "tampered"
	again, err := m.Lookup("card-1")
	require.NoError(t, err)
	assert.Equal(t, "hash", again.PINHash)
	assert.Equal(t, []string{"A1", "A2"}, again.AccountIDs)

	_, err = m.Lookup("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkAccount(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateAccount("A1", 0)
	require.NoError(t, err)
	_, err = m.CreateAccount("A2", 0)
	require.NoError(t, err)
	require.NoError(t, m.Enroll("card-1", "hash", []string{"A1"}))

	require.NoError(t, m.LinkAccount("card-1", "A2"))
	// Linking twice stays duplicate-free.
	require.NoError(t, m.LinkAccount("card-1", "A2"))

	rec, err := m.Lookup("card-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, rec.AccountIDs)

	assert.ErrorIs(t, m.LinkAccount("missing", "A1"), ErrNotFound)
	assert.ErrorIs(t, m.LinkAccount("card-1", "missing"), ErrNotFound)
}

func TestSharedAccountVisibleFromTwoCards(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateAccount("joint", 500)
	require.NoError(t, err)
	require.NoError(t, m.Enroll("card-1", "h1", []string{"joint"}))
	require.NoError(t, m.Enroll("card-2", "h2", []string{"joint"}))

	_, err = m.ApplyDelta("joint", 250)
	require.NoError(t, err)

	for _, card := range []string{"card-1", "card-2"} {
		rec, err := m.Lookup(card)
		require.NoError(t, err)
		a, err := m.Get(rec.AccountIDs[0])
		require.NoError(t, err)
		assert.Equal(t, int64(750), a.Balance)
	}
}
