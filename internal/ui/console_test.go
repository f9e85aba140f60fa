package ui

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swjeon2/ATM-controller/internal/atm"
	"github.com/swjeon2/ATM-controller/internal/cashbin"
	"github.com/swjeon2/ATM-controller/internal/service"
	"github.com/swjeon2/ATM-controller/internal/store"
)

func newTestController(t *testing.T) *atm.Controller {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	mem := store.NewMemory()
	svc := service.NewService(mem, mem, log)
	_, err := mem.CreateAccount("11111-11111", 1000)
	require.NoError(t, err)
	require.NoError(t, svc.EnrollCard("1111-1111-1111-1111", "1111", []string{"11111-11111"}))

	return atm.NewController(svc, cashbin.NewBin(5000), log)
}

func runScript(t *testing.T, controller *atm.Controller, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	console := NewConsole(controller, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	console.Run()
	return out.String()
}

func TestFullWithdrawalSession(t *testing.T) {
	controller := newTestController(t)

	out := runScript(t, controller,
		"1111-1111-1111-1111", // insert card
		"1111",                // PIN
		"1",                   // select first account by index
		"1",                   // view balance
		"3",                   // withdraw
		"300",
		"q", // shutdown from idle after auto-logout
	)

	assert.Contains(t, out, "Card recognized.")
	assert.Contains(t, out, "Authentication successful.")
	assert.Contains(t, out, "Current Balance: $1000")
	assert.Contains(t, out, "$300 dispensed")
	assert.Contains(t, out, "Auto-logging out")
	assert.Equal(t, atm.StateIdle, controller.State())
}

func TestInvalidCardAndPINRetry(t *testing.T) {
	controller := newTestController(t)

	out := runScript(t, controller,
		"9999-9999-9999-9999", // unknown card
		"1111-1111-1111-1111",
		"0000", // wrong PIN
		"1111", // right PIN
		"c",    // cancel at selection
		"q",
	)

	assert.Contains(t, out, "Error: Invalid Card.")
	assert.Contains(t, out, "Error: Invalid PIN. Please try again.")
	assert.Contains(t, out, "Authentication successful.")
	assert.Equal(t, atm.StateIdle, controller.State())
}

func TestCancelDuringAuthentication(t *testing.T) {
	controller := newTestController(t)

	out := runScript(t, controller,
		"1111-1111-1111-1111",
		"c", // cancel instead of PIN
		"q",
	)

	assert.Contains(t, out, "Transaction cancelled.")
	assert.Equal(t, atm.StateIdle, controller.State())
}

func TestDepositEndsSession(t *testing.T) {
	controller := newTestController(t)

	out := runScript(t, controller,
		"1111-1111-1111-1111",
		"1111",
		"11111-11111", // select by ID
		"2",           // deposit
		"250",
		"q",
	)

	assert.Contains(t, out, "$250 deposited successfully.")
	assert.Equal(t, atm.StateIdle, controller.State())
}
