// Package ledger implements the append-only double-entry journal. Posting
// is the only mutation; entries are immutable once stored and corrections
// are posted as reversing entries, never edited in place.
package ledger

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kontor-dev/kontor/internal/apperr"
	"github.com/kontor-dev/kontor/internal/id"
	"github.com/kontor-dev/kontor/internal/model"
	"github.com/kontor-dev/kontor/internal/money"
)

// AccountResolver looks up an account by ID, reporting false for unknown
// or inactive accounts.
type AccountResolver interface {
	Resolve(id string) (model.Account, bool)
}

// Engine owns the journal. Posting is serialized by an internal mutex;
// reads go through immutable snapshots and never block writers.
type Engine struct {
	mu            sync.RWMutex
	entries       []model.JournalEntry
	lockedThrough time.Time // postings on or before this date fail, zero = no lock

	resolver AccountResolver
	store    *Store // nil = memory only
	log      *zap.Logger
}

// NewEngine creates an Engine validating accounts against resolver.
func NewEngine(resolver AccountResolver, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{resolver: resolver, log: log}
}

// AttachStore loads previously persisted entries from store and appends
// all future postings to it. Must be called before the first Post.
func (e *Engine) AttachStore(store *Store) error {
	entries, err := store.Load()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = entries
	e.store = store
	return nil
}

// LockThrough closes the accounting period up to and including date.
func (e *Engine) LockThrough(date time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lockedThrough = date
}

// DraftLine is one line of an entry draft.
type DraftLine struct {
	AccountID string
	Side      model.Side
	Amount    money.Cents
}

// Draft is a journal entry before posting.
type Draft struct {
	BookingDate  time.Time
	Description  string
	Counterparty string
	Lines        []DraftLine
	Reverses     int64
}

// Post validates a draft and appends it as an immutable entry with the
// next sequence number. It is the only way the ledger changes.
func (e *Engine) Post(draft Draft) (model.JournalEntry, error) {
	if err := e.validate(draft); err != nil {
		return model.JournalEntry{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.lockedThrough.IsZero() && !draft.BookingDate.After(e.lockedThrough) {
		return model.JournalEntry{}, apperr.Newf(apperr.KindPeriodClosed,
			"booking date %s falls into the closed period ending %s",
			draft.BookingDate.Format("2006-01-02"), e.lockedThrough.Format("2006-01-02"))
	}

	seq := int64(len(e.entries)) + 1
	entry := model.JournalEntry{
		ID:           id.FormatEntryID(draft.BookingDate.Year(), seq),
		Sequence:     seq,
		BookingDate:  draft.BookingDate,
		Description:  draft.Description,
		Counterparty: draft.Counterparty,
		Lines:        make([]model.JournalLine, len(draft.Lines)),
		Reverses:     draft.Reverses,
		CreatedAt:    time.Now().UTC(),
	}
	for i, l := range draft.Lines {
		entry.Lines[i] = model.JournalLine{AccountID: l.AccountID, Side: l.Side, Amount: l.Amount}
	}

	if e.store != nil {
		if err := e.store.Append(entry); err != nil {
			return model.JournalEntry{}, apperr.Wrap(apperr.KindInternal, "persist_entry", err)
		}
	}
	e.entries = append(e.entries, entry)

	e.log.Info("journal entry posted",
		zap.Int64("sequence", seq),
		zap.String("entry_id", entry.ID),
		zap.String("booking_date", entry.BookingDate.Format("2006-01-02")),
		zap.Int64("total", int64(entry.TotalDebit())))
	return entry, nil
}

func (e *Engine) validate(draft Draft) error {
	if draft.BookingDate.IsZero() {
		return apperr.New(apperr.KindValidation, "booking date is required")
	}
	if len(draft.Lines) < 2 {
		return apperr.New(apperr.KindValidation, "entry needs at least two lines")
	}

	var totalDebit, totalCredit money.Cents
	for i, l := range draft.Lines {
		if !l.Side.Valid() {
			return apperr.Newf(apperr.KindValidation, "line %d: invalid side %q", i, l.Side)
		}
		if l.Amount <= 0 {
			return apperr.Newf(apperr.KindValidation, "line %d: amount must be positive", i)
		}
		if _, ok := e.resolver.Resolve(l.AccountID); !ok {
			return apperr.Newf(apperr.KindUnknownAccount, "line %d: unknown or inactive account %q", i, l.AccountID)
		}
		if l.Side == model.SideDebit {
			totalDebit += l.Amount
		} else {
			totalCredit += l.Amount
		}
	}

	if totalDebit != totalCredit {
		// An imbalance reaching the ledger means an upstream bug, not bad
		// user input. Log loudly before rejecting.
		e.log.Error("imbalanced entry rejected",
			zap.Int64("total_debit", int64(totalDebit)),
			zap.Int64("total_credit", int64(totalCredit)),
			zap.String("description", draft.Description))
		return apperr.Newf(apperr.KindImbalancedEntry,
			"debits (%s) != credits (%s)", totalDebit, totalCredit)
	}
	return nil
}

// Reverse posts a mirror of the entry with the given sequence, dated at
// date. This is the only correction mechanism.
func (e *Engine) Reverse(seq int64, date time.Time, description string) (model.JournalEntry, error) {
	original, err := e.Entry(seq)
	if err != nil {
		return model.JournalEntry{}, err
	}

	draft := Draft{
		BookingDate:  date,
		Description:  description,
		Counterparty: original.Counterparty,
		Lines:        make([]DraftLine, len(original.Lines)),
		Reverses:     seq,
	}
	for i, l := range original.Lines {
		side := model.SideDebit
		if l.Side == model.SideDebit {
			side = model.SideCredit
		}
		draft.Lines[i] = DraftLine{AccountID: l.AccountID, Side: side, Amount: l.Amount}
	}
	return e.Post(draft)
}

// Entry returns the entry with the given sequence.
func (e *Engine) Entry(seq int64) (model.JournalEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if seq < 1 || seq > int64(len(e.entries)) {
		return model.JournalEntry{}, apperr.Newf(apperr.KindNotFound, "no journal entry with sequence %d", seq)
	}
	return e.entries[seq-1], nil
}

// Snapshot returns an immutable view of the ledger. Entries posted after
// the snapshot is taken are not visible through it, so reports computed
// from one snapshot are internally consistent.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{entries: e.entries[:len(e.entries):len(e.entries)]}
}
