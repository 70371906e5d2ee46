// Package reports derives financial reports from ledger snapshots. Every
// report is a pure function of one snapshot and a date range: it mutates
// nothing and recomputing it against the same snapshot gives the same
// result, even while postings continue concurrently.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kontor-dev/kontor/internal/accounts"
	"github.com/kontor-dev/kontor/internal/ledger"
	"github.com/kontor-dev/kontor/internal/model"
	"github.com/kontor-dev/kontor/internal/money"
	"github.com/kontor-dev/kontor/internal/tax"
)

// Engine computes reports over the ledger.
type Engine struct {
	led   *ledger.Engine
	reg   *accounts.Registry
	taxes *tax.Engine
}

// NewEngine creates a report Engine.
func NewEngine(led *ledger.Engine, reg *accounts.Registry, taxes *tax.Engine) *Engine {
	return &Engine{led: led, reg: reg, taxes: taxes}
}

// TrialBalanceRow summarizes one account's activity in the range.
type TrialBalanceRow struct {
	AccountID   string            `json:"account_id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Type        model.AccountType `json:"type"`
	TotalDebit  money.Cents       `json:"total_debit"`
	TotalCredit money.Cents       `json:"total_credit"`
	Balance     money.Cents       `json:"balance"`
}

// TrialBalance is the per-account debit/credit summary over a range.
// Its grand totals are always equal; that is the ledger invariant
// surfacing at report level.
type TrialBalance struct {
	From        time.Time         `json:"from"`
	To          time.Time         `json:"to"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  money.Cents       `json:"total_debit"`
	TotalCredit money.Cents       `json:"total_credit"`
}

// TrialBalance computes the trial balance over [from, to]. Accounts
// without activity in the range are omitted.
func (e *Engine) TrialBalance(from, to time.Time) TrialBalance {
	snap := e.led.Snapshot()

	type bucket struct{ debit, credit money.Cents }
	activity := make(map[string]*bucket)
	for _, entry := range snap.InRange(from, to) {
		for _, l := range entry.Lines {
			b := activity[l.AccountID]
			if b == nil {
				b = &bucket{}
				activity[l.AccountID] = b
			}
			if l.Side == model.SideDebit {
				b.debit += l.Amount
			} else {
				b.credit += l.Amount
			}
		}
	}

	tb := TrialBalance{From: from, To: to}
	for _, acct := range e.reg.List("") {
		b, ok := activity[acct.ID]
		if !ok {
			continue
		}
		balance := ledger.SignedAmount(acct.Type, model.SideDebit, b.debit) +
			ledger.SignedAmount(acct.Type, model.SideCredit, b.credit)
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			AccountID:   acct.ID,
			Code:        acct.Code,
			Name:        acct.Name,
			Type:        acct.Type,
			TotalDebit:  b.debit,
			TotalCredit: b.credit,
			Balance:     balance,
		})
		tb.TotalDebit += b.debit
		tb.TotalCredit += b.credit
	}
	return tb
}

// AccountAmount is an account with its signed balance for a report.
type AccountAmount struct {
	AccountID string      `json:"account_id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Amount    money.Cents `json:"amount"`
}

// ProfitLoss sums revenue and expense accounts over a range.
type ProfitLoss struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Revenue      []AccountAmount `json:"revenue"`
	Expenses     []AccountAmount `json:"expenses"`
	TotalRevenue money.Cents     `json:"total_revenue"`
	TotalExpense money.Cents     `json:"total_expense"`
	NetProfit    money.Cents     `json:"net_profit"`
}

// ProfitLoss computes the P&L over [from, to].
func (e *Engine) ProfitLoss(from, to time.Time) ProfitLoss {
	snap := e.led.Snapshot()

	pl := ProfitLoss{From: from, To: to}
	for _, acct := range e.reg.List("") {
		if acct.Type != model.AccountTypeRevenue && acct.Type != model.AccountTypeExpense {
			continue
		}
		amount := rangeBalance(snap, acct, from, to)
		if amount == 0 {
			continue
		}
		row := AccountAmount{AccountID: acct.ID, Code: acct.Code, Name: acct.Name, Amount: amount}
		if acct.Type == model.AccountTypeRevenue {
			pl.Revenue = append(pl.Revenue, row)
			pl.TotalRevenue += amount
		} else {
			pl.Expenses = append(pl.Expenses, row)
			pl.TotalExpense += amount
		}
	}
	pl.NetProfit = pl.TotalRevenue - pl.TotalExpense
	return pl
}

// BalanceSheet states assets against liabilities, equity and the running
// profit or loss at a point in time. Both sides are always equal: the
// accounting equation is the strongest whole-engine correctness check.
type BalanceSheet struct {
	AsOf                      time.Time       `json:"as_of"`
	Assets                    []AccountAmount `json:"assets"`
	Liabilities               []AccountAmount `json:"liabilities"`
	Equity                    []AccountAmount `json:"equity"`
	TotalAssets               money.Cents     `json:"total_assets"`
	TotalLiabilities          money.Cents     `json:"total_liabilities"`
	TotalEquity               money.Cents     `json:"total_equity"`
	ProfitLoss                money.Cents     `json:"profit_loss"`
	TotalLiabilitiesAndEquity money.Cents     `json:"total_liabilities_and_equity"`
}

// BalanceSheet computes the balance sheet as of a date. The profit or
// loss accumulated since genesis is folded into the equity side.
func (e *Engine) BalanceSheet(asOf time.Time) BalanceSheet {
	snap := e.led.Snapshot()

	bs := BalanceSheet{AsOf: asOf}
	for _, acct := range e.reg.List("") {
		amount := snap.Balance(acct, asOf)
		if amount == 0 {
			continue
		}
		row := AccountAmount{AccountID: acct.ID, Code: acct.Code, Name: acct.Name, Amount: amount}
		switch acct.Type {
		case model.AccountTypeAsset:
			bs.Assets = append(bs.Assets, row)
			bs.TotalAssets += amount
		case model.AccountTypeLiability:
			bs.Liabilities = append(bs.Liabilities, row)
			bs.TotalLiabilities += amount
		case model.AccountTypeEquity:
			bs.Equity = append(bs.Equity, row)
			bs.TotalEquity += amount
		case model.AccountTypeRevenue:
			bs.ProfitLoss += amount
		case model.AccountTypeExpense:
			bs.ProfitLoss -= amount
		}
	}
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities + bs.TotalEquity + bs.ProfitLoss
	return bs
}

// JournalExport returns the raw entries in range, ordered by
// (booking_date, sequence) and grouped by entry.
func (e *Engine) JournalExport(from, to time.Time) []model.JournalEntry {
	return e.led.Snapshot().InRange(from, to)
}

// TaxReportRow aggregates activity for one tax key.
type TaxReportRow struct {
	KeyCode    string          `json:"key_code"`
	KeyName    string          `json:"key_name"`
	Rate       decimal.Decimal `json:"rate"`
	BaseAmount money.Cents     `json:"base_amount"`
	TaxAmount  money.Cents     `json:"tax_amount"`
}

// TaxReport groups ledger activity by tax key: base amounts from revenue
// and expense accounts carrying the key, tax amounts from the tax
// accounts carrying it.
type TaxReport struct {
	From      time.Time      `json:"from"`
	To        time.Time      `json:"to"`
	Rows      []TaxReportRow `json:"rows"`
	TotalBase money.Cents    `json:"total_base"`
	TotalTax  money.Cents    `json:"total_tax"`
}

// TaxReport computes the VAT summary over [from, to].
func (e *Engine) TaxReport(from, to time.Time) TaxReport {
	snap := e.led.Snapshot()

	report := TaxReport{From: from, To: to}
	rows := make(map[string]*TaxReportRow)

	for _, acct := range e.reg.List("") {
		if acct.TaxKeyCode == "" {
			continue
		}
		amount := rangeBalance(snap, acct, from, to)
		if amount == 0 {
			continue
		}

		row := rows[acct.TaxKeyCode]
		if row == nil {
			row = &TaxReportRow{KeyCode: acct.TaxKeyCode}
			if key, err := e.taxes.Lookup(acct.TaxKeyCode); err == nil {
				row.KeyName = key.Name
				row.Rate = key.Rate
			}
			rows[acct.TaxKeyCode] = row
		}

		switch acct.Type {
		case model.AccountTypeRevenue, model.AccountTypeExpense:
			row.BaseAmount += amount
		default:
			row.TaxAmount += amount
		}
	}

	for _, key := range e.taxes.Keys() {
		if row, ok := rows[key.Code]; ok {
			report.Rows = append(report.Rows, *row)
			report.TotalBase += row.BaseAmount
			report.TotalTax += row.TaxAmount
		}
	}
	return report
}

// rangeBalance sums an account's signed activity inside [from, to].
func rangeBalance(snap ledger.Snapshot, acct model.Account, from, to time.Time) money.Cents {
	var sum money.Cents
	for _, entry := range snap.InRange(from, to) {
		for _, l := range entry.Lines {
			if l.AccountID == acct.ID {
				sum += ledger.SignedAmount(acct.Type, l.Side, l.Amount)
			}
		}
	}
	return sum
}
