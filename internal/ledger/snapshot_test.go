package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontor-dev/kontor/internal/model"
	"github.com/kontor-dev/kontor/internal/money"
)

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		acctType model.AccountType
		side     model.Side
		want     money.Cents
	}{
		{model.AccountTypeAsset, model.SideDebit, 100},
		{model.AccountTypeAsset, model.SideCredit, -100},
		{model.AccountTypeExpense, model.SideDebit, 100},
		{model.AccountTypeExpense, model.SideCredit, -100},
		{model.AccountTypeLiability, model.SideDebit, -100},
		{model.AccountTypeLiability, model.SideCredit, 100},
		{model.AccountTypeEquity, model.SideCredit, 100},
		{model.AccountTypeRevenue, model.SideCredit, 100},
		{model.AccountTypeRevenue, model.SideDebit, -100},
	}
	for _, tt := range tests {
		got := SignedAmount(tt.acctType, tt.side, 100)
		assert.Equal(t, tt.want, got, "%s/%s", tt.acctType, tt.side)
	}
}

func TestInRange_OrderAndBounds(t *testing.T) {
	e := NewEngine(newMockResolver(bank, expense), nil)

	// Posted out of date order on purpose.
	_, err := e.Post(simpleDraft(20, expense.ID, bank.ID, 100)) // seq 1
	require.NoError(t, err)
	_, err = e.Post(simpleDraft(10, expense.ID, bank.ID, 200)) // seq 2
	require.NoError(t, err)
	_, err = e.Post(simpleDraft(10, expense.ID, bank.ID, 300)) // seq 3, same day as seq 2
	require.NoError(t, err)

	got := e.Snapshot().InRange(date(2025, 3, 1), date(2025, 3, 31))
	require.Len(t, got, 3)
	// Date order, ties broken by sequence.
	assert.Equal(t, int64(2), got[0].Sequence)
	assert.Equal(t, int64(3), got[1].Sequence)
	assert.Equal(t, int64(1), got[2].Sequence)

	// Bounds are inclusive.
	got = e.Snapshot().InRange(date(2025, 3, 10), date(2025, 3, 10))
	require.Len(t, got, 2)

	// Zero bounds are open.
	got = e.Snapshot().InRange(time.Time{}, time.Time{})
	assert.Len(t, got, 3)
}

func TestBalanceRange(t *testing.T) {
	e := NewEngine(newMockResolver(bank, expense, revenue), nil)

	// February activity (before the window): bank +500.
	_, err := e.Post(Draft{
		BookingDate: date(2025, 2, 10),
		Description: "Februar",
		Lines: []DraftLine{
			{AccountID: bank.ID, Side: model.SideDebit, Amount: 500},
			{AccountID: revenue.ID, Side: model.SideCredit, Amount: 500},
		},
	})
	require.NoError(t, err)

	// March activity: bank -300, then +1000.
	_, err = e.Post(simpleDraft(5, expense.ID, bank.ID, 300))
	require.NoError(t, err)
	_, err = e.Post(Draft{
		BookingDate: date(2025, 3, 12),
		Description: "Einnahme",
		Lines: []DraftLine{
			{AccountID: bank.ID, Side: model.SideDebit, Amount: 1000},
			{AccountID: revenue.ID, Side: model.SideCredit, Amount: 1000},
		},
	})
	require.NoError(t, err)

	st := e.Snapshot().BalanceRange(bank, date(2025, 3, 1), date(2025, 3, 31))

	assert.Equal(t, money.Cents(500), st.Opening)
	require.Len(t, st.Lines, 2)

	// Window totals cover only the window.
	assert.Equal(t, money.Cents(1000), st.TotalDebit)
	assert.Equal(t, money.Cents(300), st.TotalCredit)

	// Running balance carries the opening balance forward.
	assert.Equal(t, money.Cents(200), st.Lines[0].Running)
	assert.Equal(t, money.Cents(1200), st.Lines[1].Running)
	assert.Equal(t, money.Cents(1200), st.Closing)

	// Closing = Opening + signed window activity, independent of totals.
	assert.Equal(t, st.Opening+st.TotalDebit-st.TotalCredit, st.Closing)
}

func TestBalanceRange_ClosingMatchesFullHistory(t *testing.T) {
	e := NewEngine(newMockResolver(bank, expense, revenue), nil)

	amounts := []money.Cents{100, 250, 75, 1200, 30}
	for i, amt := range amounts {
		_, err := e.Post(Draft{
			BookingDate: date(2025, 2, 1+i*7),
			Description: "entry",
			Lines: []DraftLine{
				{AccountID: bank.ID, Side: model.SideDebit, Amount: amt},
				{AccountID: revenue.ID, Side: model.SideCredit, Amount: amt},
			},
		})
		require.NoError(t, err)
	}

	snap := e.Snapshot()
	st := snap.BalanceRange(bank, date(2025, 2, 10), date(2025, 3, 1))
	full := snap.Balance(bank, date(2025, 3, 1))
	assert.Equal(t, full, st.Closing, "closing must equal the balance over the full history up to the window end")
}

func TestBalanceRange_TieBreakBySequence(t *testing.T) {
	e := NewEngine(newMockResolver(bank, expense, revenue), nil)

	// Three entries on the same day; statement order must follow sequence.
	for _, amt := range []money.Cents{10, 20, 30} {
		_, err := e.Post(Draft{
			BookingDate: date(2025, 3, 15),
			Description: "same day",
			Lines: []DraftLine{
				{AccountID: bank.ID, Side: model.SideDebit, Amount: amt},
				{AccountID: revenue.ID, Side: model.SideCredit, Amount: amt},
			},
		})
		require.NoError(t, err)
	}

	st := e.Snapshot().BalanceRange(bank, date(2025, 3, 1), date(2025, 3, 31))
	require.Len(t, st.Lines, 3)
	assert.Equal(t, int64(1), st.Lines[0].Sequence)
	assert.Equal(t, int64(2), st.Lines[1].Sequence)
	assert.Equal(t, int64(3), st.Lines[2].Sequence)
	assert.Equal(t, money.Cents(10), st.Lines[0].Running)
	assert.Equal(t, money.Cents(30), st.Lines[1].Running)
	assert.Equal(t, money.Cents(60), st.Lines[2].Running)
}

func TestBalanceRange_EmptyWindow(t *testing.T) {
	e := NewEngine(newMockResolver(bank, expense, revenue), nil)

	_, err := e.Post(Draft{
		BookingDate: date(2025, 1, 10),
		Description: "Januar",
		Lines: []DraftLine{
			{AccountID: bank.ID, Side: model.SideDebit, Amount: 700},
			{AccountID: revenue.ID, Side: model.SideCredit, Amount: 700},
		},
	})
	require.NoError(t, err)

	st := e.Snapshot().BalanceRange(bank, date(2025, 6, 1), date(2025, 6, 30))
	assert.Empty(t, st.Lines)
	assert.Equal(t, money.Cents(700), st.Opening)
	assert.Equal(t, money.Cents(0), st.TotalDebit)
	assert.Equal(t, money.Cents(0), st.TotalCredit)
	assert.Equal(t, money.Cents(700), st.Closing)
}

func TestBalance_AsOf(t *testing.T) {
	e := NewEngine(newMockResolver(bank, expense, revenue), nil)

	_, err := e.Post(simpleDraft(10, expense.ID, bank.ID, 100))
	require.NoError(t, err)
	_, err = e.Post(simpleDraft(20, expense.ID, bank.ID, 200))
	require.NoError(t, err)

	snap := e.Snapshot()
	assert.Equal(t, money.Cents(-100), snap.Balance(bank, date(2025, 3, 15)))
	assert.Equal(t, money.Cents(-300), snap.Balance(bank, time.Time{}))
	assert.Equal(t, money.Cents(300), snap.Balance(expense, time.Time{}))
}
