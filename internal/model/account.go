package model

import "time"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Account is one entry in the chart of accounts. Codes follow SKR03
// conventions but any unique 4-10 character code is accepted. Accounts
// referenced by posted journal lines are never deleted, only deactivated.
type Account struct {
	ID         string
	Code       string
	Name       string
	Type       AccountType
	TaxKeyCode string // default tax key, empty if none
	Active     bool
	CreatedAt  time.Time
}
