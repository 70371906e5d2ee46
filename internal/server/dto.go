package server

import (
	"time"

	"github.com/kontor-dev/kontor/internal/apperr"
	"github.com/kontor-dev/kontor/internal/model"
	"github.com/kontor-dev/kontor/internal/money"
)

// All wire amounts are integer minor units (cents); dates are ISO-8601
// date strings.

const dateFormat = "2006-01-02"

type createAccountReq struct {
	Code       string `json:"code" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Type       string `json:"type" binding:"required"`
	TaxKeyCode string `json:"tax_key_code"`
}

type accountResp struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	TaxKeyCode string `json:"tax_key_code,omitempty"`
	Active     bool   `json:"active"`
}

func toAccountResp(a model.Account) accountResp {
	return accountResp{
		ID:         a.ID,
		Code:       a.Code,
		Name:       a.Name,
		Type:       string(a.Type),
		TaxKeyCode: a.TaxKeyCode,
		Active:     a.Active,
	}
}

type createDocumentReq struct {
	Description       string `json:"description"`
	Contact           string `json:"contact"`
	Date              string `json:"date" binding:"required"`
	Amount            int64  `json:"amount" binding:"min=0"`
	TaxKeyCode        string `json:"tax_key_code"`
	CategoryAccountID string `json:"category_account_id"`
	OffsetAccountID   string `json:"offset_account_id"`
}

type documentResp struct {
	ID                    string `json:"id"`
	Type                  string `json:"document_type"`
	Status                string `json:"status"`
	Description           string `json:"description"`
	Contact               string `json:"contact,omitempty"`
	Date                  string `json:"date"`
	Amount                int64  `json:"amount"`
	NetAmount             int64  `json:"net_amount,omitempty"`
	TaxAmount             int64  `json:"tax_amount,omitempty"`
	TaxKeyCode            string `json:"tax_key_code,omitempty"`
	CategoryAccountID     string `json:"category_account_id,omitempty"`
	OffsetAccountID       string `json:"offset_account_id,omitempty"`
	EntrySequence         int64  `json:"entry_sequence,omitempty"`
	PaymentEntrySequence  int64  `json:"payment_entry_sequence,omitempty"`
	ReversalEntrySequence int64  `json:"reversal_entry_sequence,omitempty"`
	OrderID               string `json:"order_id,omitempty"`
	AttachmentName        string `json:"attachment_name,omitempty"`
	AttachmentHash        string `json:"attachment_hash,omitempty"`
}

func toDocumentResp(d model.Document) documentResp {
	return documentResp{
		ID:                    d.ID,
		Type:                  string(d.Type),
		Status:                string(d.Status),
		Description:           d.Description,
		Contact:               d.Contact,
		Date:                  d.Date.Format(dateFormat),
		Amount:                int64(d.GrossAmount),
		NetAmount:             int64(d.NetAmount),
		TaxAmount:             int64(d.TaxAmount),
		TaxKeyCode:            d.TaxKeyCode,
		CategoryAccountID:     d.CategoryAccountID,
		OffsetAccountID:       d.OffsetAccountID,
		EntrySequence:         d.EntrySequence,
		PaymentEntrySequence:  d.PaymentEntrySequence,
		ReversalEntrySequence: d.ReversalEntrySequence,
		OrderID:               d.OrderID,
		AttachmentName:        d.AttachmentName,
		AttachmentHash:        d.AttachmentHash,
	}
}

type paymentReq struct {
	PaymentAccountID string `json:"payment_account_id" binding:"required"`
	PaymentDate      string `json:"payment_date" binding:"required"`
}

type deliverReq struct {
	Partial bool `json:"partial"`
}

type orderInvoiceReq struct {
	Amount  int64 `json:"amount"`
	Partial bool  `json:"partial"`
}

type entryLineResp struct {
	AccountID string `json:"account_id"`
	Side      string `json:"side"`
	Amount    int64  `json:"amount"`
}

type entryResp struct {
	ID           string          `json:"id"`
	Sequence     int64           `json:"sequence"`
	BookingDate  string          `json:"booking_date"`
	Description  string          `json:"description"`
	Counterparty string          `json:"counterparty,omitempty"`
	Reverses     int64           `json:"reverses,omitempty"`
	Lines        []entryLineResp `json:"lines"`
}

func toEntryResp(e model.JournalEntry) entryResp {
	resp := entryResp{
		ID:           e.ID,
		Sequence:     e.Sequence,
		BookingDate:  e.BookingDate.Format(dateFormat),
		Description:  e.Description,
		Counterparty: e.Counterparty,
		Reverses:     e.Reverses,
		Lines:        make([]entryLineResp, len(e.Lines)),
	}
	for i, l := range e.Lines {
		resp.Lines[i] = entryLineResp{AccountID: l.AccountID, Side: string(l.Side), Amount: int64(l.Amount)}
	}
	return resp
}

type transactionResp struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
	Contact     string `json:"contact,omitempty"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
	Balance     int64  `json:"balance"`
}

type statementResp struct {
	Account      accountResp       `json:"account"`
	Summary      statementSummary  `json:"summary"`
	Transactions []transactionResp `json:"transactions"`
}

type statementSummary struct {
	OpeningBalance int64 `json:"opening_balance"`
	TotalDebit     int64 `json:"total_debit"`
	TotalCredit    int64 `json:"total_credit"`
	CurrentBalance int64 `json:"current_balance"`
}

// parseDate parses an ISO-8601 date query parameter; empty is allowed
// and yields the zero time.
func parseDate(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, apperr.Newf(apperr.KindValidation, "invalid %s %q, want YYYY-MM-DD", name, value)
	}
	return t, nil
}

func cents(v int64) money.Cents {
	return money.Cents(v)
}
