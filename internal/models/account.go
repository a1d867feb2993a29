package models

import (
	"github.com/shopspring/decimal"
)

// Account is a bank account, wallet or credit card.
type Account struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	IsActive           bool            `json:"isActive"`
	IsCreditCard       bool            `json:"isCreditCard"`
	InitialBalance     decimal.Decimal `json:"initialBalance"`               // non-card accounts only
	InitialBalanceDate string          `json:"initialBalanceDate,omitempty"` // YYYY-MM-DD
	ClosingDay         int             `json:"closingDay,omitempty"`         // 1-30, cards only
}

// HasBillingCycle reports whether purchases on the account are billed on a
// statement rather than settled immediately.
func (a *Account) HasBillingCycle() bool {
	return a.IsCreditCard && a.ClosingDay > 0
}

// AccountIndex maps account ids to accounts.
type AccountIndex map[string]*Account

// IndexAccounts builds an AccountIndex over accounts.
func IndexAccounts(accounts []Account) AccountIndex {
	idx := make(AccountIndex, len(accounts))
	for i := range accounts {
		idx[accounts[i].ID] = &accounts[i]
	}
	return idx
}

// IsCard reports whether id refers to a credit-card account.
func (idx AccountIndex) IsCard(id string) bool {
	a, ok := idx[id]
	return ok && a.IsCreditCard
}
