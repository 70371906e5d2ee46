package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kontor-dev/kontor/internal/model"
	"github.com/kontor-dev/kontor/internal/money"
)

// Header is the CSV header for journal.csv. One row per journal line;
// lines of the same entry share a sequence and appear contiguously.
const Header = "sequence,entry_id,date,description,counterparty,reverses,account_id,debit,credit,created_at"

const (
	numFields    = 10
	dateFormat   = "2006-01-02"
	colSeq       = 0
	colEntryID   = 1
	colDate      = 2
	colDesc      = 3
	colCparty    = 4
	colReverses  = 5
	colAcctID    = 6
	colDebit     = 7
	colCredit    = 8
	colCreatedAt = 9
)

// Store persists the journal as an append-only CSV file. It matches the
// ledger's write model: entries are only ever appended, never rewritten.
type Store struct {
	path string
}

// NewStore creates a Store writing to <dataDir>/journal/journal.csv.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, "journal", "journal.csv")}
}

// Append writes one entry's lines to the journal file, creating the file
// and header if needed.
func (s *Store) Append(entry model.JournalEntry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for _, row := range MarshalEntry(entry) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing entry %d: %w", entry.Sequence, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load reads the full journal back into entries. A missing file is an
// empty ledger, not an error.
func (s *Store) Load() ([]model.JournalEntry, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", s.path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", s.path, err)
	}
	return entries, nil
}

// ReadEntries reads all journal entries from a journal.csv reader.
func ReadEntries(r io.Reader) ([]model.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []model.JournalEntry
	for i, rec := range records[1:] {
		entry, line, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if n := len(entries); n > 0 && entries[n-1].Sequence == entry.Sequence {
			entries[n-1].Lines = append(entries[n-1].Lines, line)
			continue
		}
		entry.Lines = []model.JournalLine{line}
		entries = append(entries, entry)
	}
	return entries, nil
}

// MarshalEntry converts an entry into CSV rows, one per line.
func MarshalEntry(entry model.JournalEntry) [][]string {
	rows := make([][]string, len(entry.Lines))
	for i, l := range entry.Lines {
		row := make([]string, numFields)
		row[colSeq] = strconv.FormatInt(entry.Sequence, 10)
		row[colEntryID] = entry.ID
		row[colDate] = entry.BookingDate.Format(dateFormat)
		row[colDesc] = entry.Description
		row[colCparty] = entry.Counterparty
		if entry.Reverses != 0 {
			row[colReverses] = strconv.FormatInt(entry.Reverses, 10)
		}
		row[colAcctID] = l.AccountID
		if l.Side == model.SideDebit {
			row[colDebit] = l.Amount.String()
		} else {
			row[colCredit] = l.Amount.String()
		}
		row[colCreatedAt] = entry.CreatedAt.UTC().Format(time.RFC3339)
		rows[i] = row
	}
	return rows
}

func unmarshalRow(record []string) (model.JournalEntry, model.JournalLine, error) {
	if len(record) != numFields {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	seq, err := strconv.ParseInt(record[colSeq], 10, 64)
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing sequence %q: %w", record[colSeq], err)
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	var reverses int64
	if record[colReverses] != "" {
		reverses, err = strconv.ParseInt(record[colReverses], 10, 64)
		if err != nil {
			return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing reverses %q: %w", record[colReverses], err)
		}
	}

	createdAt, err := time.Parse(time.RFC3339, record[colCreatedAt])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}

	line := model.JournalLine{AccountID: record[colAcctID]}
	switch {
	case record[colDebit] != "" && record[colCredit] == "":
		line.Side = model.SideDebit
		line.Amount, err = money.Parse(record[colDebit])
	case record[colCredit] != "" && record[colDebit] == "":
		line.Side = model.SideCredit
		line.Amount, err = money.Parse(record[colCredit])
	default:
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("row must have exactly one of debit or credit")
	}
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, err
	}

	entry := model.JournalEntry{
		ID:           record[colEntryID],
		Sequence:     seq,
		BookingDate:  date,
		Description:  record[colDesc],
		Counterparty: record[colCparty],
		Reverses:     reverses,
		CreatedAt:    createdAt,
	}
	return entry, line, nil
}
