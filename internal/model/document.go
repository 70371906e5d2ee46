package model

import (
	"time"

	"github.com/kontor-dev/kontor/internal/money"
)

// DocumentType distinguishes the three document state machines.
type DocumentType string

const (
	DocumentTypeBeleg   DocumentType = "beleg"
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeOrder   DocumentType = "order"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeBeleg, DocumentTypeInvoice, DocumentTypeOrder:
		return true
	}
	return false
}

// DocumentStatus is a closed set of lifecycle states. Which statuses are
// reachable, and from where, depends on the document type; the transition
// tables live in the documents package.
type DocumentStatus string

const (
	StatusDraft            DocumentStatus = "draft"
	StatusBooked           DocumentStatus = "booked"
	StatusSent             DocumentStatus = "sent"
	StatusPaid             DocumentStatus = "paid"
	StatusCancelled        DocumentStatus = "cancelled"
	StatusOpen             DocumentStatus = "open"
	StatusPartialDelivered DocumentStatus = "partial_delivered"
	StatusDelivered        DocumentStatus = "delivered"
	StatusPartialInvoiced  DocumentStatus = "partial_invoiced"
	StatusInvoiced         DocumentStatus = "invoiced"
	StatusCompleted        DocumentStatus = "completed"
)

// Document is a Beleg, Invoice or Order. Fields are mutable only while
// the document is in its initial state; booking freezes the document and
// attaches the journal entry it produced.
type Document struct {
	ID     string
	Type   DocumentType
	Status DocumentStatus

	Description string
	Contact     string
	Date        time.Time

	// Gross amount and the tax key used to decompose it. NetAmount and
	// TaxAmount are filled in at booking time and keep the split that was
	// valid then, even if the tax key's rate changes later.
	GrossAmount money.Cents
	NetAmount   money.Cents
	TaxAmount   money.Cents
	TaxKeyCode  string

	// Category is the revenue or expense account the document books
	// against; Offset is the counter account (bank or cash) for Belege.
	CategoryAccountID string
	OffsetAccountID   string

	// Journal references, set by booking, payment and cancellation.
	// Never cleared once set.
	EntrySequence         int64
	PaymentEntrySequence  int64
	ReversalEntrySequence int64

	// Linked order for invoices created out of an order.
	OrderID string

	AttachmentName string
	AttachmentHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}
