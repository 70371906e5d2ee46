package accounts

import "github.com/kontor-dev/kontor/internal/model"

// DefaultChart returns a minimal SKR03 chart of accounts suitable for a
// small German business. Tax key codes refer to the default tax table in
// the tax package: VST19/VST7 for input tax, UST19/UST7 for output tax.
func DefaultChart() []CreateParams {
	return []CreateParams{
		{Code: "0800", Name: "Gezeichnetes Kapital", Type: model.AccountTypeEquity},
		{Code: "1000", Name: "Kasse", Type: model.AccountTypeAsset},
		{Code: "1200", Name: "Bank", Type: model.AccountTypeAsset},
		{Code: "1400", Name: "Forderungen aus Lieferungen und Leistungen", Type: model.AccountTypeAsset},
		{Code: "1571", Name: "Abziehbare Vorsteuer 7%", Type: model.AccountTypeAsset, TaxKeyCode: "VST7"},
		{Code: "1576", Name: "Abziehbare Vorsteuer 19%", Type: model.AccountTypeAsset, TaxKeyCode: "VST19"},
		{Code: "1600", Name: "Verbindlichkeiten aus Lieferungen und Leistungen", Type: model.AccountTypeLiability},
		{Code: "1771", Name: "Umsatzsteuer 7%", Type: model.AccountTypeLiability, TaxKeyCode: "UST7"},
		{Code: "1776", Name: "Umsatzsteuer 19%", Type: model.AccountTypeLiability, TaxKeyCode: "UST19"},
		{Code: "4200", Name: "Raumkosten", Type: model.AccountTypeExpense, TaxKeyCode: "VST19"},
		{Code: "4900", Name: "Sonstige betriebliche Aufwendungen", Type: model.AccountTypeExpense, TaxKeyCode: "VST19"},
		{Code: "4930", Name: "Bürobedarf", Type: model.AccountTypeExpense, TaxKeyCode: "VST19"},
		{Code: "8120", Name: "Steuerfreie Umsätze", Type: model.AccountTypeRevenue},
		{Code: "8300", Name: "Erlöse 7% USt", Type: model.AccountTypeRevenue, TaxKeyCode: "UST7"},
		{Code: "8400", Name: "Erlöse 19% USt", Type: model.AccountTypeRevenue, TaxKeyCode: "UST19"},
	}
}
