package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontor-dev/kontor/internal/model"
)

func TestStore_AppendLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	e := NewEngine(newMockResolver(bank, expense), nil)
	require.NoError(t, e.AttachStore(store))

	posted, err := e.Post(Draft{
		BookingDate:  date(2025, 3, 15),
		Description:  "Büromaterial",
		Counterparty: "Schreibwaren Müller",
		Lines: []DraftLine{
			{AccountID: expense.ID, Side: model.SideDebit, Amount: 11900},
			{AccountID: bank.ID, Side: model.SideCredit, Amount: 11900},
		},
	})
	require.NoError(t, err)

	// A fresh store reads the same entry back.
	loaded, err := NewStore(dir).Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, posted.ID, got.ID)
	assert.Equal(t, posted.Sequence, got.Sequence)
	assert.True(t, posted.BookingDate.Equal(got.BookingDate))
	assert.Equal(t, "Büromaterial", got.Description)
	assert.Equal(t, "Schreibwaren Müller", got.Counterparty)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, posted.Lines[0], got.Lines[0])
	assert.Equal(t, posted.Lines[1], got.Lines[1])
}

func TestStore_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	e := NewEngine(newMockResolver(bank, expense), nil)
	require.NoError(t, e.AttachStore(NewStore(dir)))
	for i := 1; i <= 3; i++ {
		_, err := e.Post(simpleDraft(i, expense.ID, bank.ID, 100))
		require.NoError(t, err)
	}

	// Restart: a new engine over the same directory continues the sequence.
	e2 := NewEngine(newMockResolver(bank, expense), nil)
	require.NoError(t, e2.AttachStore(NewStore(dir)))
	require.Equal(t, 3, e2.Snapshot().Len())

	entry, err := e2.Post(simpleDraft(4, expense.ID, bank.ID, 100))
	require.NoError(t, err)
	assert.Equal(t, int64(4), entry.Sequence)
}

func TestStore_LoadMissingFile(t *testing.T) {
	entries, err := NewStore(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_HeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()

	e := NewEngine(newMockResolver(bank, expense), nil)
	require.NoError(t, e.AttachStore(NewStore(dir)))
	for i := 1; i <= 2; i++ {
		_, err := e.Post(simpleDraft(i, expense.ID, bank.ID, 100))
		require.NoError(t, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "journal", "journal.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "sequence,"))
}

func TestStore_ReversalRoundTrip(t *testing.T) {
	dir := t.TempDir()

	e := NewEngine(newMockResolver(bank, expense), nil)
	require.NoError(t, e.AttachStore(NewStore(dir)))

	original, err := e.Post(simpleDraft(10, expense.ID, bank.ID, 5000))
	require.NoError(t, err)
	_, err = e.Reverse(original.Sequence, date(2025, 3, 20), "Storno")
	require.NoError(t, err)

	loaded, err := NewStore(dir).Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, original.Sequence, loaded[1].Reverses)
}

func TestReadEntries_RejectsBothSides(t *testing.T) {
	csv := Header + "\n" +
		"1,2025-000001,2025-03-15,bad,,,acct-1,100.00,100.00,2025-03-15T10:00:00Z\n"
	_, err := ReadEntries(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of debit or credit")
}

func TestReadEntries_GroupsLinesBySequence(t *testing.T) {
	csv := Header + "\n" +
		"1,2025-000001,2025-03-15,Miete,Vermieter,,acct-exp,100.00,,2025-03-15T10:00:00Z\n" +
		"1,2025-000001,2025-03-15,Miete,Vermieter,,acct-bank,,100.00,2025-03-15T10:00:00Z\n" +
		"2,2025-000002,2025-03-16,Einkauf,,,acct-exp,50.00,,2025-03-16T10:00:00Z\n" +
		"2,2025-000002,2025-03-16,Einkauf,,,acct-bank,,50.00,2025-03-16T10:00:00Z\n"

	entries, err := ReadEntries(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Len(t, entries[0].Lines, 2)
	assert.Len(t, entries[1].Lines, 2)
	assert.Equal(t, "Vermieter", entries[0].Counterparty)
	assert.True(t, entries[0].Balanced())
}
