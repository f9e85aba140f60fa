package cashbin

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasEnough(t *testing.T) {
	b := NewBin(100)

	assert.True(t, b.HasEnough(100))
	assert.True(t, b.HasEnough(1))
	assert.False(t, b.HasEnough(101))
	assert.False(t, b.HasEnough(0))
	assert.False(t, b.HasEnough(-5))
}

func TestDispense(t *testing.T) {
	b := NewBin(100)

	require.NoError(t, b.Dispense(60))
	assert.Equal(t, int64(40), b.Stock())

	assert.ErrorIs(t, b.Dispense(41), ErrInsufficientStock)
	assert.Equal(t, int64(40), b.Stock())

	assert.ErrorIs(t, b.Dispense(0), ErrBadAmount)
	assert.ErrorIs(t, b.Dispense(-1), ErrBadAmount)

	require.NoError(t, b.Dispense(40))
	assert.Equal(t, int64(0), b.Stock())
}

func TestLoad(t *testing.T) {
	b := NewBin(0)

	require.NoError(t, b.Load(500))
	assert.Equal(t, int64(500), b.Stock())

	assert.ErrorIs(t, b.Load(0), ErrBadAmount)
	assert.ErrorIs(t, b.Load(-10), ErrBadAmount)
}

func TestNegativeInitialStockClamped(t *testing.T) {
	b := NewBin(-50)
	assert.Equal(t, int64(0), b.Stock())
}

func TestConcurrentDispenseNeverOverdraws(t *testing.T) {
	b := NewBin(100)

	const workers = 200
	var wg sync.WaitGroup
	wg.Add(workers)
	ok := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if err := b.Dispense(1); err == nil {
				ok <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(ok)

	dispensed := 0
	for range ok {
		dispensed++
	}
	assert.Equal(t, 100, dispensed)
	assert.Equal(t, int64(0), b.Stock())
}
