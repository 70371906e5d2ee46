package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatEntryID returns a journal entry ID like "2025-000042" from the
// booking year and the ledger-wide sequence number.
func FormatEntryID(year int, seq int64) string {
	return fmt.Sprintf("%04d-%06d", year, seq)
}

// ParseEntryID parses "2025-000042" into year and sequence.
func ParseEntryID(id string) (year int, seq int64, err error) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid entry ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", id, err)
	}

	seq, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}

	return year, seq, nil
}
