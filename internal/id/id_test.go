package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntryID(t *testing.T) {
	assert.Equal(t, "2025-000001", FormatEntryID(2025, 1))
	assert.Equal(t, "2025-000042", FormatEntryID(2025, 42))
	assert.Equal(t, "2026-123456", FormatEntryID(2026, 123456))
}

func TestParseEntryID(t *testing.T) {
	year, seq, err := ParseEntryID("2025-000042")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, int64(42), seq)
}

func TestParseEntryID_Invalid(t *testing.T) {
	for _, in := range []string{"2025", "abcd-000001", "2025-xyz"} {
		_, _, err := ParseEntryID(in)
		assert.Error(t, err, "input %s", in)
	}
}

func TestRoundTrip(t *testing.T) {
	id := FormatEntryID(2025, 7)
	year, seq, err := ParseEntryID(id)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, int64(7), seq)
}
