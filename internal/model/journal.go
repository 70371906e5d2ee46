package model

import (
	"time"

	"github.com/kontor-dev/kontor/internal/money"
)

// Side is the debit or credit side of a journal line (Soll/Haben).
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideDebit || s == SideCredit
}

// JournalLine is one side of a posting. Amounts are always positive;
// direction is carried by Side. A line is owned exclusively by its entry.
type JournalLine struct {
	AccountID string
	Side      Side
	Amount    money.Cents
}

// JournalEntry is an immutable, balanced set of journal lines. Entries
// are never edited in place; corrections are posted as reversing entries.
// Sequence is strictly increasing across the ledger and breaks ordering
// ties between entries sharing a booking date.
type JournalEntry struct {
	ID           string
	Sequence     int64
	BookingDate  time.Time
	Description  string
	Counterparty string
	Lines        []JournalLine
	Reverses     int64 // sequence of the entry this one reverses, 0 if none
	CreatedAt    time.Time
}

// TotalDebit returns the sum of all debit lines.
func (e JournalEntry) TotalDebit() money.Cents {
	var sum money.Cents
	for _, l := range e.Lines {
		if l.Side == SideDebit {
			sum += l.Amount
		}
	}
	return sum
}

// TotalCredit returns the sum of all credit lines.
func (e JournalEntry) TotalCredit() money.Cents {
	var sum money.Cents
	for _, l := range e.Lines {
		if l.Side == SideCredit {
			sum += l.Amount
		}
	}
	return sum
}

// Balanced reports whether debits equal credits.
func (e JournalEntry) Balanced() bool {
	return e.TotalDebit() == e.TotalCredit()
}
