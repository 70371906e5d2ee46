package ledger

import (
	"sort"
	"time"

	"github.com/kontor-dev/kontor/internal/model"
	"github.com/kontor-dev/kontor/internal/money"
)

// DebitIncreases reports whether a debit raises the balance of an account
// of type t. This is the single definition of the sign convention: asset
// and expense accounts grow on the debit side, liability, equity and
// revenue accounts grow on the credit side. The report layer reuses this
// rather than re-deriving it.
func DebitIncreases(t model.AccountType) bool {
	return t == model.AccountTypeAsset || t == model.AccountTypeExpense
}

// SignedAmount converts a line amount into a signed balance contribution
// for an account of type t.
func SignedAmount(t model.AccountType, side model.Side, amount money.Cents) money.Cents {
	if DebitIncreases(t) == (side == model.SideDebit) {
		return amount
	}
	return -amount
}

// Snapshot is an immutable view of the ledger taken at one instant.
// All derived computations (statements, reports) run against a snapshot
// so concurrent postings cannot change a result mid-computation.
type Snapshot struct {
	entries []model.JournalEntry
}

// Entries returns all entries in sequence order.
func (s Snapshot) Entries() []model.JournalEntry {
	return s.entries
}

// Len returns the number of entries in the snapshot.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// inWindow reports whether date falls inside [from, to]. Zero bounds are
// open: a zero from means genesis, a zero to means no upper bound.
func inWindow(date, from, to time.Time) bool {
	if !from.IsZero() && date.Before(from) {
		return false
	}
	if !to.IsZero() && date.After(to) {
		return false
	}
	return true
}

// InRange returns entries whose booking date falls inside [from, to],
// ordered by (booking_date, sequence).
func (s Snapshot) InRange(from, to time.Time) []model.JournalEntry {
	var result []model.JournalEntry
	for _, e := range s.entries {
		if inWindow(e.BookingDate, from, to) {
			result = append(result, e)
		}
	}
	sortEntries(result)
	return result
}

// sortEntries orders entries by booking date, ties broken by sequence.
// Sequence reflects insertion order, so the ordering is deterministic.
func sortEntries(entries []model.JournalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].BookingDate.Equal(entries[j].BookingDate) {
			return entries[i].BookingDate.Before(entries[j].BookingDate)
		}
		return entries[i].Sequence < entries[j].Sequence
	})
}

// StatementLine is one journal line against an account, with the running
// balance after applying it.
type StatementLine struct {
	Sequence     int64
	EntryID      string
	Date         time.Time
	Description  string
	Counterparty string
	Side         model.Side
	Amount       money.Cents
	Running      money.Cents
}

// Statement is the result of a balance range query. TotalDebit and
// TotalCredit cover the window only; Opening carries the balance from
// the full account history before the window, and Closing is
// Opening plus the window's signed activity. The window totals are
// deliberately independent of the carried-forward opening balance.
type Statement struct {
	Opening     money.Cents
	Lines       []StatementLine
	TotalDebit  money.Cents
	TotalCredit money.Cents
	Closing     money.Cents
}

// BalanceRange computes the statement of acct over [from, to]. Lines are
// ordered by (booking_date, sequence). The closing balance is seeded by
// the account's balance just before from, computed over the full history.
func (s Snapshot) BalanceRange(acct model.Account, from, to time.Time) Statement {
	ordered := make([]model.JournalEntry, len(s.entries))
	copy(ordered, s.entries)
	sortEntries(ordered)

	var st Statement
	running := money.Cents(0)

	for _, e := range ordered {
		for _, l := range e.Lines {
			if l.AccountID != acct.ID {
				continue
			}
			signed := SignedAmount(acct.Type, l.Side, l.Amount)

			if !from.IsZero() && e.BookingDate.Before(from) {
				st.Opening += signed
				running += signed
				continue
			}
			if !to.IsZero() && e.BookingDate.After(to) {
				continue
			}

			running += signed
			if l.Side == model.SideDebit {
				st.TotalDebit += l.Amount
			} else {
				st.TotalCredit += l.Amount
			}
			st.Lines = append(st.Lines, StatementLine{
				Sequence:     e.Sequence,
				EntryID:      e.ID,
				Date:         e.BookingDate,
				Description:  e.Description,
				Counterparty: e.Counterparty,
				Side:         l.Side,
				Amount:       l.Amount,
				Running:      running,
			})
		}
	}

	st.Closing = running
	return st
}

// Balance returns the signed balance of acct as of the given date
// (zero date = over the whole ledger).
func (s Snapshot) Balance(acct model.Account, asOf time.Time) money.Cents {
	var balance money.Cents
	for _, e := range s.entries {
		if !asOf.IsZero() && e.BookingDate.After(asOf) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == acct.ID {
				balance += SignedAmount(acct.Type, l.Side, l.Amount)
			}
		}
	}
	return balance
}
