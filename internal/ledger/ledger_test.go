package ledger_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/store"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func holidayStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	require.NoError(t, s.Initialize(core.Dataset{
		Pots: []core.Pot{{ID: 1, Name: "Holiday", Total: dec("100"), Target: dec("500")}},
	}))
	return s
}

func TestHolidayScenario(t *testing.T) {
	s := holidayStore(t)

	require.NoError(t, s.Replace(ledger.Deposit(1, dec("50"))))
	assert.True(t, s.Snapshot().Pots[0].Total.Equal(dec("150")))

	err := s.Replace(ledger.Withdraw(1, dec("200")))
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	assert.True(t, s.Snapshot().Pots[0].Total.Equal(dec("150")))
	assert.Equal(t, uint64(1), s.Revision())
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	for _, amt := range []string{"0.01", "12.34", "100", "999.99"} {
		t.Run(amt, func(t *testing.T) {
			s := holidayStore(t)
			before := s.Snapshot()

			require.NoError(t, s.Replace(ledger.Deposit(1, dec(amt))))
			require.NoError(t, s.Replace(ledger.Withdraw(1, dec(amt))))

			assert.True(t, before.Pots[0].Total.Equal(s.Snapshot().Pots[0].Total))
		})
	}
}

func TestWithdrawWholeTotal(t *testing.T) {
	s := holidayStore(t)
	require.NoError(t, s.Replace(ledger.Withdraw(1, dec("100"))))
	assert.True(t, s.Snapshot().Pots[0].Total.IsZero())
}

func TestAmountErrors(t *testing.T) {
	tests := []struct {
		name string
		up   store.Updater
		want error
	}{
		{"deposit zero", ledger.Deposit(1, decimal.Zero), core.ErrInvalidAmount},
		{"deposit negative", ledger.Deposit(1, dec("-5")), core.ErrInvalidAmount},
		{"withdraw zero", ledger.Withdraw(1, decimal.Zero), core.ErrInvalidAmount},
		{"deposit unknown pot", ledger.Deposit(42, dec("5")), core.ErrPotNotFound},
		{"withdraw unknown pot", ledger.Withdraw(42, dec("5")), core.ErrPotNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := holidayStore(t)
			assert.ErrorIs(t, s.Replace(tt.up), tt.want)
			assert.True(t, s.Snapshot().Pots[0].Total.Equal(dec("100")))
		})
	}
}

func TestCreate(t *testing.T) {
	s := holidayStore(t)
	now := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, s.Replace(ledger.Create("  New Laptop ", dec("1200"), now)))
	require.NoError(t, s.Replace(ledger.Create("Gift", dec("60"), now)))

	pots := s.Snapshot().Pots
	require.Len(t, pots, 3)
	assert.Equal(t, "New Laptop", pots[1].Name)
	assert.True(t, pots[1].Total.IsZero())
	assert.Equal(t, now.UnixMilli(), pots[1].ID)
	assert.Equal(t, now.UnixMilli()+1, pots[2].ID, "same-millisecond ids must not collide")
}

func TestCreateErrors(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		pot    string
		target decimal.Decimal
		want   error
	}{
		{"blank name", "   ", dec("10"), core.ErrInvalidName},
		{"zero target", "Car", decimal.Zero, core.ErrInvalidTarget},
		{"negative target", "Car", dec("-1"), core.ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := holidayStore(t)
			assert.ErrorIs(t, s.Replace(ledger.Create(tt.pot, tt.target, now)), tt.want)
			assert.Len(t, s.Snapshot().Pots, 1)
		})
	}
}

func TestCreateRejectsExhaustedIDs(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Initialize(core.Dataset{
		Pots: []core.Pot{{ID: math.MaxInt64, Name: "Last", Total: decimal.Zero, Target: dec("5")}},
	}))

	err := s.Replace(ledger.Create("Next", dec("5"), time.UnixMilli(1_700_000_000_000)))
	assert.ErrorIs(t, err, core.ErrPotIDExhausted)
	require.Len(t, s.Snapshot().Pots, 1)
	assert.Equal(t, uint64(0), s.Revision())
}

func TestRemove(t *testing.T) {
	s := holidayStore(t)

	require.NoError(t, s.Replace(ledger.Remove(99)))
	assert.Len(t, s.Snapshot().Pots, 1)

	require.NoError(t, s.Replace(ledger.Remove(1)))
	assert.Empty(t, s.Snapshot().Pots)
}
