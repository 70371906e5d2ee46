package documents

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kontor-dev/kontor/internal/accounts"
	"github.com/kontor-dev/kontor/internal/apperr"
	"github.com/kontor-dev/kontor/internal/auditlog"
	"github.com/kontor-dev/kontor/internal/ledger"
	"github.com/kontor-dev/kontor/internal/model"
	"github.com/kontor-dev/kontor/internal/money"
	"github.com/kontor-dev/kontor/internal/tax"
)

// Deps collects the collaborators a Service needs.
type Deps struct {
	Store    *Store
	Ledger   *ledger.Engine
	Taxes    *tax.Engine
	Accounts *accounts.Registry
	Policy   Policy
	Files    FileStore // nil disables uploads
	AuditDir string    // empty disables the audit trail
	Logger   *zap.Logger
}

// Service drives the document state machines and is the only code that
// turns documents into journal entries. Booking is atomic: the document
// transitions exactly when the ledger posting succeeds, otherwise it
// stays where it was.
type Service struct {
	docs     *Store
	led      *ledger.Engine
	taxes    *tax.Engine
	reg      *accounts.Registry
	policy   Policy
	files    FileStore
	auditDir string
	log      *zap.Logger
}

// NewService creates a Service from its dependencies.
func NewService(deps Deps) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		docs:     deps.Store,
		led:      deps.Ledger,
		taxes:    deps.Taxes,
		reg:      deps.Accounts,
		policy:   deps.Policy,
		files:    deps.Files,
		auditDir: deps.AuditDir,
		log:      log,
	}
}

// CreateParams holds the caller-supplied fields for a new document.
type CreateParams struct {
	Type              model.DocumentType
	Description       string
	Contact           string
	Date              time.Time
	GrossAmount       money.Cents
	TaxKeyCode        string
	CategoryAccountID string
	OffsetAccountID   string
}

// Create adds a document in its initial state.
func (s *Service) Create(params CreateParams) (model.Document, error) {
	if err := s.validateParams(params); err != nil {
		return model.Document{}, err
	}

	now := time.Now().UTC()
	doc := model.Document{
		ID:                uuid.NewString(),
		Type:              params.Type,
		Status:            InitialStatus(params.Type),
		Description:       params.Description,
		Contact:           params.Contact,
		Date:              params.Date,
		GrossAmount:       params.GrossAmount,
		TaxKeyCode:        params.TaxKeyCode,
		CategoryAccountID: params.CategoryAccountID,
		OffsetAccountID:   params.OffsetAccountID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.docs.Put(doc)
	return doc, nil
}

func (s *Service) validateParams(params CreateParams) error {
	if !params.Type.Valid() {
		return apperr.Newf(apperr.KindValidation, "unknown document type %q", params.Type)
	}
	if params.Date.IsZero() {
		return apperr.New(apperr.KindValidation, "document date is required")
	}
	if params.GrossAmount < 0 {
		return apperr.New(apperr.KindValidation, "gross amount must not be negative")
	}
	if params.TaxKeyCode != "" {
		if _, err := s.taxes.Lookup(params.TaxKeyCode); err != nil {
			return err
		}
	}
	if params.Type != model.DocumentTypeOrder {
		if _, ok := s.reg.Resolve(params.CategoryAccountID); !ok {
			return apperr.Newf(apperr.KindUnknownAccount, "unknown or inactive category account %q", params.CategoryAccountID)
		}
	}
	if params.Type == model.DocumentTypeBeleg {
		if _, ok := s.reg.Resolve(params.OffsetAccountID); !ok {
			return apperr.Newf(apperr.KindUnknownAccount, "unknown or inactive offset account %q", params.OffsetAccountID)
		}
	}
	return nil
}

// Update mutates a document that has not left its initial state yet.
func (s *Service) Update(id string, params CreateParams) (model.Document, error) {
	current, err := s.docs.Get(id)
	if err != nil {
		return model.Document{}, err
	}
	params.Type = current.Type
	if err := s.validateParams(params); err != nil {
		return model.Document{}, err
	}

	return s.docs.UpdateDraft(id, func(d *model.Document) {
		d.Description = params.Description
		d.Contact = params.Contact
		d.Date = params.Date
		d.GrossAmount = params.GrossAmount
		d.TaxKeyCode = params.TaxKeyCode
		d.CategoryAccountID = params.CategoryAccountID
		d.OffsetAccountID = params.OffsetAccountID
	})
}

// Get returns a document by ID.
func (s *Service) Get(id string) (model.Document, error) {
	return s.docs.Get(id)
}

// List returns documents, optionally filtered by type.
func (s *Service) List(filter model.DocumentType) []model.Document {
	return s.docs.List(filter)
}

// Book turns a draft Beleg or Invoice into a booked document backed by a
// balanced journal entry. A repeated call fails with AlreadyBookedError;
// when two callers race, the loser of the status check-and-set fails and
// the ledger gains exactly one entry.
func (s *Service) Book(id string) (model.Document, model.JournalEntry, error) {
	doc, err := s.docs.reserve(id)
	if err != nil {
		return model.Document{}, model.JournalEntry{}, err
	}

	if doc.Type == model.DocumentTypeOrder {
		s.docs.release(id)
		return model.Document{}, model.JournalEntry{}, apperr.New(apperr.KindInvalidState, "orders are not booked directly")
	}
	if doc.Status != model.StatusDraft {
		s.docs.release(id)
		if doc.Status == model.StatusCancelled {
			return model.Document{}, model.JournalEntry{}, apperr.Newf(apperr.KindInvalidState, "document %s is cancelled", id)
		}
		return model.Document{}, model.JournalEntry{}, apperr.Newf(apperr.KindAlreadyBooked, "document %s is already booked", id)
	}

	net, taxAmt, err := s.split(doc)
	if err != nil {
		s.docs.release(id)
		return model.Document{}, model.JournalEntry{}, withStep(err, "tax_split")
	}

	lines, err := s.bookingLines(doc, net, taxAmt)
	if err != nil {
		s.docs.release(id)
		return model.Document{}, model.JournalEntry{}, withStep(err, "build_lines")
	}

	entry, err := s.led.Post(ledger.Draft{
		BookingDate:  doc.Date,
		Description:  doc.Description,
		Counterparty: doc.Contact,
		Lines:        lines,
	})
	if err != nil {
		// Posting failed: the reservation is dropped and the document
		// stays in draft. No partial state is visible to readers.
		s.docs.release(id)
		return model.Document{}, model.JournalEntry{}, withStep(err, "post_entry")
	}

	booked := s.docs.commit(id, model.StatusBooked, func(d *model.Document) {
		d.EntrySequence = entry.Sequence
		d.NetAmount = net
		d.TaxAmount = taxAmt
	})

	s.audit("book", booked, entry.ID, fmt.Sprintf("gross=%s net=%s tax=%s", doc.GrossAmount, net, taxAmt))
	s.log.Info("document booked",
		zap.String("document_id", id),
		zap.String("type", string(doc.Type)),
		zap.Int64("entry_sequence", entry.Sequence))
	return booked, entry, nil
}

// split decomposes the document's gross amount using the tax key's rate.
// Documents without a tax key book at a zero rate.
func (s *Service) split(doc model.Document) (net, taxAmt money.Cents, err error) {
	rate := decimal.Zero
	if doc.TaxKeyCode != "" {
		key, err := s.taxes.Lookup(doc.TaxKeyCode)
		if err != nil {
			return 0, 0, err
		}
		rate = key.Rate
	}
	return tax.SplitGross(doc.GrossAmount, rate)
}

// bookingLines builds the balanced lines for a booking. The split always
// reconciles: gross == net + tax on both sides of the entry.
func (s *Service) bookingLines(doc model.Document, net, taxAmt money.Cents) ([]ledger.DraftLine, error) {
	category, ok := s.reg.Resolve(doc.CategoryAccountID)
	if !ok {
		return nil, apperr.Newf(apperr.KindUnknownAccount, "unknown or inactive category account %q", doc.CategoryAccountID)
	}

	var taxAccountID string
	if taxAmt > 0 {
		code, err := s.policy.taxAccountCode(doc.TaxKeyCode, category.Type)
		if err != nil {
			return nil, err
		}
		taxAcct, err := s.reg.GetByCode(code)
		if err != nil {
			return nil, err
		}
		taxAccountID = taxAcct.ID
	}

	switch doc.Type {
	case model.DocumentTypeBeleg:
		offset, ok := s.reg.Resolve(doc.OffsetAccountID)
		if !ok {
			return nil, apperr.Newf(apperr.KindUnknownAccount, "unknown or inactive offset account %q", doc.OffsetAccountID)
		}
		if category.Type == model.AccountTypeRevenue {
			// Income Beleg: money in, revenue and output tax credited.
			lines := []ledger.DraftLine{
				{AccountID: offset.ID, Side: model.SideDebit, Amount: doc.GrossAmount},
				{AccountID: category.ID, Side: model.SideCredit, Amount: net},
			}
			if taxAmt > 0 {
				lines = append(lines, ledger.DraftLine{AccountID: taxAccountID, Side: model.SideCredit, Amount: taxAmt})
			}
			return lines, nil
		}
		// Expense Beleg: expense and input tax debited, offset credited.
		lines := []ledger.DraftLine{
			{AccountID: category.ID, Side: model.SideDebit, Amount: net},
		}
		if taxAmt > 0 {
			lines = append(lines, ledger.DraftLine{AccountID: taxAccountID, Side: model.SideDebit, Amount: taxAmt})
		}
		lines = append(lines, ledger.DraftLine{AccountID: offset.ID, Side: model.SideCredit, Amount: doc.GrossAmount})
		return lines, nil

	case model.DocumentTypeInvoice:
		receivable, err := s.reg.GetByCode(s.policy.ReceivableAccountCode)
		if err != nil {
			return nil, err
		}
		lines := []ledger.DraftLine{
			{AccountID: receivable.ID, Side: model.SideDebit, Amount: doc.GrossAmount},
			{AccountID: category.ID, Side: model.SideCredit, Amount: net},
		}
		if taxAmt > 0 {
			lines = append(lines, ledger.DraftLine{AccountID: taxAccountID, Side: model.SideCredit, Amount: taxAmt})
		}
		return lines, nil
	}
	return nil, apperr.Newf(apperr.KindInvalidState, "cannot build booking lines for %s", doc.Type)
}

// RecordPayment settles a booked or sent invoice. It posts the
// reconciling entry (debit the payment account, credit the receivable)
// and transitions the invoice to paid. Valid only once per invoice.
func (s *Service) RecordPayment(id, paymentAccountID string, date time.Time) (model.Document, model.JournalEntry, error) {
	doc, err := s.docs.reserve(id)
	if err != nil {
		return model.Document{}, model.JournalEntry{}, err
	}

	if doc.Type != model.DocumentTypeInvoice {
		s.docs.release(id)
		return model.Document{}, model.JournalEntry{}, apperr.Newf(apperr.KindInvalidState, "payments are recorded on invoices, not %s", doc.Type)
	}
	if doc.Status != model.StatusBooked && doc.Status != model.StatusSent {
		s.docs.release(id)
		return model.Document{}, model.JournalEntry{}, apperr.Newf(apperr.KindInvalidState,
			"invoice %s is %s; payment requires booked or sent", id, doc.Status)
	}

	payment, ok := s.reg.Resolve(paymentAccountID)
	if !ok {
		s.docs.release(id)
		return model.Document{}, model.JournalEntry{}, apperr.Newf(apperr.KindUnknownAccount, "unknown or inactive payment account %q", paymentAccountID)
	}
	receivable, err := s.reg.GetByCode(s.policy.ReceivableAccountCode)
	if err != nil {
		s.docs.release(id)
		return model.Document{}, model.JournalEntry{}, err
	}

	entry, err := s.led.Post(ledger.Draft{
		BookingDate:  date,
		Description:  "Zahlung: " + doc.Description,
		Counterparty: doc.Contact,
		Lines: []ledger.DraftLine{
			{AccountID: payment.ID, Side: model.SideDebit, Amount: doc.GrossAmount},
			{AccountID: receivable.ID, Side: model.SideCredit, Amount: doc.GrossAmount},
		},
	})
	if err != nil {
		s.docs.release(id)
		return model.Document{}, model.JournalEntry{}, withStep(err, "post_payment")
	}

	paid := s.docs.commit(id, model.StatusPaid, func(d *model.Document) {
		d.PaymentEntrySequence = entry.Sequence
	})

	s.audit("payment", paid, entry.ID, "account="+payment.Code)
	return paid, entry, nil
}

// MarkSent transitions a booked invoice to sent. No posting involved.
func (s *Service) MarkSent(id string) (model.Document, error) {
	return s.simpleTransition(id, model.DocumentTypeInvoice, model.StatusSent)
}

// MarkPaid transitions a booked Beleg to paid. The booking already moved
// the money (the offset account is the bank), so no second entry is
// posted.
func (s *Service) MarkPaid(id string) (model.Document, error) {
	return s.simpleTransition(id, model.DocumentTypeBeleg, model.StatusPaid)
}

func (s *Service) simpleTransition(id string, wantType model.DocumentType, to model.DocumentStatus) (model.Document, error) {
	doc, err := s.docs.reserve(id)
	if err != nil {
		return model.Document{}, err
	}

	if doc.Type != wantType || !CanTransition(doc.Type, doc.Status, to) {
		s.docs.release(id)
		return model.Document{}, apperr.Newf(apperr.KindInvalidState,
			"%s %s cannot move from %s to %s", doc.Type, id, doc.Status, to)
	}

	updated := s.docs.commit(id, to, nil)
	s.audit(string(to), updated, "", "")
	return updated, nil
}

// Cancel terminates a document. Cancelling a booked document posts a
// reversing entry so the ledger stays consistent; the original entry is
// never touched.
func (s *Service) Cancel(id string, date time.Time) (model.Document, error) {
	doc, err := s.docs.reserve(id)
	if err != nil {
		return model.Document{}, err
	}

	if !CanTransition(doc.Type, doc.Status, model.StatusCancelled) {
		s.docs.release(id)
		return model.Document{}, apperr.Newf(apperr.KindInvalidState,
			"%s %s cannot be cancelled from %s", doc.Type, id, doc.Status)
	}

	var reversal model.JournalEntry
	if doc.EntrySequence != 0 {
		reversal, err = s.led.Reverse(doc.EntrySequence, date, "Storno: "+doc.Description)
		if err != nil {
			s.docs.release(id)
			return model.Document{}, withStep(err, "post_reversal")
		}
	}

	cancelled := s.docs.commit(id, model.StatusCancelled, func(d *model.Document) {
		if reversal.Sequence != 0 {
			d.ReversalEntrySequence = reversal.Sequence
		}
	})

	s.audit("cancel", cancelled, reversal.ID, "")
	return cancelled, nil
}

// RecordDelivery advances an order's delivery state. With partial set the
// order moves to partial_delivered, otherwise to delivered.
func (s *Service) RecordDelivery(id string, partial bool) (model.Document, error) {
	to := model.StatusDelivered
	if partial {
		to = model.StatusPartialDelivered
	}
	return s.orderTransition(id, to)
}

// InvoiceOrder creates a draft invoice out of a delivered order and
// advances the order's invoicing state. Fully invoiced and completed
// orders reject further invoicing.
func (s *Service) InvoiceOrder(id string, gross money.Cents, partial bool) (model.Document, model.Document, error) {
	order, err := s.docs.reserve(id)
	if err != nil {
		return model.Document{}, model.Document{}, err
	}

	to := model.StatusInvoiced
	if partial {
		to = model.StatusPartialInvoiced
	}
	if order.Type != model.DocumentTypeOrder || !CanTransition(order.Type, order.Status, to) {
		s.docs.release(id)
		return model.Document{}, model.Document{}, apperr.Newf(apperr.KindInvalidState,
			"order %s cannot be invoiced from %s", id, order.Status)
	}

	if gross == 0 {
		gross = order.GrossAmount
	}
	invoice, err := s.Create(CreateParams{
		Type:              model.DocumentTypeInvoice,
		Description:       order.Description,
		Contact:           order.Contact,
		Date:              time.Now().UTC().Truncate(24 * time.Hour),
		GrossAmount:       gross,
		TaxKeyCode:        order.TaxKeyCode,
		CategoryAccountID: order.CategoryAccountID,
	})
	if err != nil {
		s.docs.release(id)
		return model.Document{}, model.Document{}, err
	}
	invoice, err = s.docs.UpdateDraft(invoice.ID, func(d *model.Document) {
		d.OrderID = id
	})
	if err != nil {
		s.docs.release(id)
		return model.Document{}, model.Document{}, err
	}

	updated := s.docs.commit(id, to, nil)
	s.audit("invoice_order", updated, "", "invoice="+invoice.ID)
	return updated, invoice, nil
}

// CompleteOrder closes a fully invoiced order.
func (s *Service) CompleteOrder(id string) (model.Document, error) {
	return s.orderTransition(id, model.StatusCompleted)
}

func (s *Service) orderTransition(id string, to model.DocumentStatus) (model.Document, error) {
	doc, err := s.docs.reserve(id)
	if err != nil {
		return model.Document{}, err
	}

	if doc.Type != model.DocumentTypeOrder || !CanTransition(doc.Type, doc.Status, to) {
		s.docs.release(id)
		return model.Document{}, apperr.Newf(apperr.KindInvalidState,
			"%s %s cannot move from %s to %s", doc.Type, id, doc.Status, to)
	}

	updated := s.docs.commit(id, to, nil)
	s.audit(string(to), updated, "", "")
	return updated, nil
}

// AttachFile stores an uploaded attachment and records its hash on the
// document. Uploads are rejected on cancelled documents.
func (s *Service) AttachFile(id, filename string, r io.Reader) (model.Document, error) {
	if s.files == nil {
		return model.Document{}, apperr.New(apperr.KindValidation, "attachment storage is not configured")
	}

	doc, err := s.docs.Get(id)
	if err != nil {
		return model.Document{}, err
	}
	if doc.Status == model.StatusCancelled {
		return model.Document{}, apperr.Newf(apperr.KindInvalidState, "document %s is cancelled", id)
	}

	hash, err := s.files.Save(id, filename, r)
	if err != nil {
		return model.Document{}, apperr.Wrap(apperr.KindInternal, "store_attachment", err)
	}
	return s.docs.setAttachment(id, filename, hash)
}

func (s *Service) audit(action string, doc model.Document, entryID, details string) {
	if s.auditDir == "" {
		return
	}
	err := auditlog.Append(s.auditDir, []auditlog.Entry{{
		Timestamp:  time.Now().UTC(),
		Actor:      "api",
		Action:     action,
		DocumentID: doc.ID,
		EntryID:    entryID,
		Details:    details,
	}})
	if err != nil {
		s.log.Warn("audit log append failed", zap.Error(err))
	}
}

// withStep tags a domain error with the failed step; foreign errors are
// wrapped as internal.
func withStep(err error, step string) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.WithStep(step)
	}
	return apperr.Wrap(apperr.KindInternal, step, err)
}
