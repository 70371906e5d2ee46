package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kontor-dev/kontor/internal/accounts"
	"github.com/kontor-dev/kontor/internal/apperr"
	"github.com/kontor-dev/kontor/internal/documents"
	"github.com/kontor-dev/kontor/internal/ledger"
	"github.com/kontor-dev/kontor/internal/model"
	"github.com/kontor-dev/kontor/internal/reports"
)

// Handler exposes the engine's operations as HTTP endpoints.
type Handler struct {
	registry *accounts.Registry
	led      *ledger.Engine
	docs     *documents.Service
	reports  *reports.Engine
}

// NewHandler creates a Handler from the engine components.
func NewHandler(registry *accounts.Registry, led *ledger.Engine, docs *documents.Service, rep *reports.Engine) *Handler {
	return &Handler{registry: registry, led: led, docs: docs, reports: rep}
}

// RegisterRoutes attaches all endpoints to the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/accounts", h.listAccounts)
	r.POST("/accounts", h.createAccount)
	r.GET("/accounts/:id", h.accountStatement)
	r.DELETE("/accounts/:id", h.deactivateAccount)

	for _, docType := range []struct {
		path string
		t    model.DocumentType
	}{
		{"belege", model.DocumentTypeBeleg},
		{"invoices", model.DocumentTypeInvoice},
		{"orders", model.DocumentTypeOrder},
	} {
		t := docType.t
		g := r.Group("/" + docType.path)
		g.GET("", h.listDocuments(t))
		g.POST("", h.createDocument(t))
		g.GET("/:id", h.getDocument)
		g.PUT("/:id", h.updateDocument)
		g.POST("/:id/cancel", h.cancelDocument)
	}

	r.POST("/belege/:id/book", h.bookDocument)
	r.POST("/belege/:id/paid", h.markBelegPaid)
	r.POST("/belege/:id/upload", h.uploadAttachment)

	r.POST("/invoices/:id/book", h.bookDocument)
	r.POST("/invoices/:id/sent", h.markInvoiceSent)
	r.POST("/invoices/:id/payment", h.recordPayment)

	r.POST("/orders/:id/deliver", h.recordDelivery)
	r.POST("/orders/:id/invoice", h.invoiceOrder)
	r.POST("/orders/:id/complete", h.completeOrder)

	r.GET("/reports/trial-balance", h.trialBalance)
	r.GET("/reports/profit-loss", h.profitLoss)
	r.GET("/reports/balance-sheet", h.balanceSheet)
	r.GET("/reports/journal-export", h.journalExport)
	r.GET("/reports/tax-report", h.taxReport)
}

// writeError renders a domain error as {message, kind, step?} with the
// status its kind maps to. Unknown errors become 500s.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	body := gin.H{"message": err.Error(), "kind": string(kind)}

	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Step != "" {
		body["step"] = appErr.Step
	}
	c.JSON(apperr.HTTPStatus(kind), body)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, apperr.Newf(apperr.KindValidation, "invalid request: %v", err))
		return false
	}
	return true
}

// --- accounts ---

func (h *Handler) listAccounts(c *gin.Context) {
	filter := model.AccountType(c.Query("type"))
	if filter != "" && !filter.Valid() {
		writeError(c, apperr.Newf(apperr.KindValidation, "unknown account type %q", filter))
		return
	}

	list := h.registry.List(filter)
	resp := make([]accountResp, len(list))
	for i, a := range list {
		resp[i] = toAccountResp(a)
	}
	c.JSON(http.StatusOK, gin.H{"accounts": resp})
}

func (h *Handler) createAccount(c *gin.Context) {
	var req createAccountReq
	if !bindJSON(c, &req) {
		return
	}

	acct, err := h.registry.Create(accounts.CreateParams{
		Code:       req.Code,
		Name:       req.Name,
		Type:       model.AccountType(req.Type),
		TaxKeyCode: req.TaxKeyCode,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountResp(acct))
}

func (h *Handler) deactivateAccount(c *gin.Context) {
	if err := h.registry.Deactivate(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) accountStatement(c *gin.Context) {
	acct, err := h.registry.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	from, err := parseDate(c.Query("from_date"), "from_date")
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := parseDate(c.Query("to_date"), "to_date")
	if err != nil {
		writeError(c, err)
		return
	}

	st := h.led.Snapshot().BalanceRange(acct, from, to)

	resp := statementResp{
		Account: toAccountResp(acct),
		Summary: statementSummary{
			OpeningBalance: int64(st.Opening),
			TotalDebit:     int64(st.TotalDebit),
			TotalCredit:    int64(st.TotalCredit),
			CurrentBalance: int64(st.Closing),
		},
		Transactions: make([]transactionResp, len(st.Lines)),
	}
	for i, l := range st.Lines {
		tx := transactionResp{
			Date:        l.Date.Format(dateFormat),
			Description: l.Description,
			Reference:   l.EntryID,
			Contact:     l.Counterparty,
			Balance:     int64(l.Running),
		}
		if l.Side == model.SideDebit {
			tx.Debit = int64(l.Amount)
		} else {
			tx.Credit = int64(l.Amount)
		}
		resp.Transactions[i] = tx
	}
	c.JSON(http.StatusOK, resp)
}

// --- documents ---

func (h *Handler) listDocuments(t model.DocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := h.docs.List(t)
		resp := make([]documentResp, len(list))
		for i, d := range list {
			resp[i] = toDocumentResp(d)
		}
		c.JSON(http.StatusOK, gin.H{"documents": resp})
	}
}

func (h *Handler) createDocument(t model.DocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createDocumentReq
		if !bindJSON(c, &req) {
			return
		}

		date, err := parseDate(req.Date, "date")
		if err != nil {
			writeError(c, err)
			return
		}

		doc, err := h.docs.Create(documents.CreateParams{
			Type:              t,
			Description:       req.Description,
			Contact:           req.Contact,
			Date:              date,
			GrossAmount:       cents(req.Amount),
			TaxKeyCode:        req.TaxKeyCode,
			CategoryAccountID: req.CategoryAccountID,
			OffsetAccountID:   req.OffsetAccountID,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toDocumentResp(doc))
	}
}

func (h *Handler) getDocument(c *gin.Context) {
	doc, err := h.docs.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResp(doc))
}

func (h *Handler) updateDocument(c *gin.Context) {
	var req createDocumentReq
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseDate(req.Date, "date")
	if err != nil {
		writeError(c, err)
		return
	}

	doc, err := h.docs.Update(c.Param("id"), documents.CreateParams{
		Description:       req.Description,
		Contact:           req.Contact,
		Date:              date,
		GrossAmount:       cents(req.Amount),
		TaxKeyCode:        req.TaxKeyCode,
		CategoryAccountID: req.CategoryAccountID,
		OffsetAccountID:   req.OffsetAccountID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResp(doc))
}

func (h *Handler) bookDocument(c *gin.Context) {
	doc, entry, err := h.docs.Book(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document": toDocumentResp(doc),
		"entry":    toEntryResp(entry),
	})
}

func (h *Handler) markBelegPaid(c *gin.Context) {
	doc, err := h.docs.MarkPaid(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResp(doc))
}

func (h *Handler) markInvoiceSent(c *gin.Context) {
	doc, err := h.docs.MarkSent(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResp(doc))
}

func (h *Handler) recordPayment(c *gin.Context) {
	var req paymentReq
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseDate(req.PaymentDate, "payment_date")
	if err != nil {
		writeError(c, err)
		return
	}

	doc, entry, err := h.docs.RecordPayment(c.Param("id"), req.PaymentAccountID, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document": toDocumentResp(doc),
		"entry":    toEntryResp(entry),
	})
}

func (h *Handler) cancelDocument(c *gin.Context) {
	date, err := parseDate(c.Query("date"), "date")
	if err != nil {
		writeError(c, err)
		return
	}
	if date.IsZero() {
		doc, getErr := h.docs.Get(c.Param("id"))
		if getErr != nil {
			writeError(c, getErr)
			return
		}
		date = doc.Date
	}

	doc, err := h.docs.Cancel(c.Param("id"), date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResp(doc))
}

func (h *Handler) uploadAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, apperr.Newf(apperr.KindValidation, "missing multipart file: %v", err))
		return
	}

	src, err := file.Open()
	if err != nil {
		writeError(c, apperr.Wrap(apperr.KindInternal, "open_upload", err))
		return
	}
	defer src.Close()

	doc, err := h.docs.AttachFile(c.Param("id"), file.Filename, src)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResp(doc))
}

// --- orders ---

func (h *Handler) recordDelivery(c *gin.Context) {
	var req deliverReq
	if !bindJSON(c, &req) {
		return
	}

	doc, err := h.docs.RecordDelivery(c.Param("id"), req.Partial)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResp(doc))
}

func (h *Handler) invoiceOrder(c *gin.Context) {
	var req orderInvoiceReq
	if !bindJSON(c, &req) {
		return
	}

	order, invoice, err := h.docs.InvoiceOrder(c.Param("id"), cents(req.Amount), req.Partial)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":   toDocumentResp(order),
		"invoice": toDocumentResp(invoice),
	})
}

func (h *Handler) completeOrder(c *gin.Context) {
	doc, err := h.docs.CompleteOrder(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResp(doc))
}

// --- reports ---

func (h *Handler) trialBalance(c *gin.Context) {
	from, err := parseDate(c.Query("from_date"), "from_date")
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := parseDate(c.Query("to_date"), "to_date")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.reports.TrialBalance(from, to))
}

func (h *Handler) profitLoss(c *gin.Context) {
	from, err := parseDate(c.Query("from_date"), "from_date")
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := parseDate(c.Query("to_date"), "to_date")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.reports.ProfitLoss(from, to))
}

func (h *Handler) balanceSheet(c *gin.Context) {
	asOf, err := parseDate(c.Query("as_of"), "as_of")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.reports.BalanceSheet(asOf))
}

func (h *Handler) journalExport(c *gin.Context) {
	from, err := parseDate(c.Query("from_date"), "from_date")
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := parseDate(c.Query("to_date"), "to_date")
	if err != nil {
		writeError(c, err)
		return
	}

	entries := h.reports.JournalExport(from, to)
	resp := make([]entryResp, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResp(e)
	}
	c.JSON(http.StatusOK, gin.H{"entries": resp})
}

func (h *Handler) taxReport(c *gin.Context) {
	from, err := parseDate(c.Query("from_date"), "from_date")
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := parseDate(c.Query("to_date"), "to_date")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.reports.TaxReport(from, to))
}
