package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the direction of an entry.
type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

// ParseKind normalizes the spellings found in stored and imported data.
// Anything that is not recognisably income is an expense.
func ParseKind(s string) Kind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INCOME", "RECEITA", "ENTRADA":
		return KindIncome
	default:
		return KindExpense
	}
}

// BillItem is a manual adjustment attached to a card-bill payment. Negative
// amounts are credits against the bill.
type BillItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  string          `json:"categoryId"`
}

// Entry is one ledger line.
type Entry struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`      // billing day, YYYY-MM-DD; empty for orphans
	CreatedAt   string          `json:"createdAt"` // RFC 3339
	CreatedBy   string          `json:"createdBy,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CategoryID  string          `json:"categoryId"`
	AccountID   string          `json:"accountId"`
	CardID      string          `json:"cardId,omitempty"` // card being paid, bill payments only
	Kind        Kind            `json:"type"`
	BillItems   []BillItem      `json:"billItems,omitempty"`

	InstallmentNumber  int    `json:"installmentNumber"`
	TotalInstallments  int    `json:"totalInstallments"`
	InstallmentGroupID string `json:"installmentGroupId,omitempty"`
}

// Normalize applies the installment defaults to entries read from storage.
func (e *Entry) Normalize() {
	if e.InstallmentNumber < 1 {
		e.InstallmentNumber = 1
	}
	if e.TotalInstallments < 1 {
		e.TotalInstallments = 1
	}
	if e.Kind == "" {
		e.Kind = KindExpense
	}
}

// Orphan reports whether the entry never received a billing date.
func (e *Entry) Orphan() bool {
	return strings.TrimSpace(e.Date) == ""
}

// IsInstallment reports whether the entry belongs to a multi-part purchase.
func (e *Entry) IsInstallment() bool {
	return e.TotalInstallments > 1 && e.InstallmentGroupID != ""
}

// BillItemsTotal sums the manual adjustments of a bill payment.
func (e *Entry) BillItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range e.BillItems {
		total = total.Add(item.Amount)
	}
	return total
}
