package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(action, docID string) Entry {
	return Entry{
		Timestamp:  time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
		Actor:      "api",
		Action:     action,
		DocumentID: docID,
		EntryID:    "2025-000001",
		Details:    "gross=119.00 net=100.00 tax=19.00",
	}
}

func TestAppendRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Append(dir, []Entry{entry("book", "doc-1")}))
	require.NoError(t, Append(dir, []Entry{entry("cancel", "doc-1")}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "book", entries[0].Action)
	assert.Equal(t, "cancel", entries[1].Action)
	assert.Equal(t, "doc-1", entries[0].DocumentID)
	assert.True(t, entries[0].Timestamp.Equal(entry("book", "doc-1").Timestamp))
}

func TestAppend_HeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Append(dir, []Entry{entry("book", "doc-1")}))
	require.NoError(t, Append(dir, []Entry{entry("payment", "doc-1")}))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "audit-log.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "timestamp,"))
}

func TestRead_MissingFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnmarshalEntry_BadTimestamp(t *testing.T) {
	_, err := UnmarshalEntry([]string{"yesterday", "api", "book", "doc-1", "", ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")
}

func TestUnmarshalEntry_WrongFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"2025-03-15T10:30:00Z", "api"})
	require.Error(t, err)
}
