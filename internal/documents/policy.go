package documents

import (
	"github.com/kontor-dev/kontor/internal/apperr"
	"github.com/kontor-dev/kontor/internal/model"
)

// Policy maps booking roles to chart-of-accounts codes. Which accounts a
// booking touches is configuration, not engine logic; the engine only
// guarantees that the resulting lines reconcile and balance.
type Policy struct {
	// ReceivableAccountCode is debited when an invoice is booked and
	// credited when its payment is recorded.
	ReceivableAccountCode string `yaml:"receivable_account"`

	// InputTaxAccounts maps tax key codes to Vorsteuer accounts, used
	// when booking expense documents.
	InputTaxAccounts map[string]string `yaml:"input_tax_accounts"`

	// OutputTaxAccounts maps tax key codes to Umsatzsteuer accounts,
	// used when booking revenue documents.
	OutputTaxAccounts map[string]string `yaml:"output_tax_accounts"`
}

// DefaultPolicy matches the default SKR03 chart.
func DefaultPolicy() Policy {
	return Policy{
		ReceivableAccountCode: "1400",
		InputTaxAccounts: map[string]string{
			"VST19": "1576",
			"VST7":  "1571",
		},
		OutputTaxAccounts: map[string]string{
			"UST19": "1776",
			"UST7":  "1771",
		},
	}
}

// taxAccountCode picks the tax account for a key, by booking direction.
func (p Policy) taxAccountCode(keyCode string, direction model.AccountType) (string, error) {
	table := p.OutputTaxAccounts
	if direction == model.AccountTypeExpense {
		table = p.InputTaxAccounts
	}
	code, ok := table[keyCode]
	if !ok {
		return "", apperr.Newf(apperr.KindValidation, "no tax account configured for key %q", keyCode)
	}
	return code, nil
}
