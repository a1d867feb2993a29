// Package billing maps purchase days to the card statement they are billed on.
package billing

import (
	"time"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
)

// ResolveEffectiveDate returns the day a purchase counts against. Cash and
// bank purchases are effective immediately. Card purchases made on or after
// the closing day go to the next statement; the result is always day 1 of the
// statement month.
//
// The month is advanced before the day is normalized, so a purchase on the
// 31st can overflow past a short month. That bucketing is kept as is.
func ResolveEffectiveDate(purchase time.Time, account *models.Account) time.Time {
	if account == nil || !account.HasBillingCycle() {
		return purchase
	}

	day := purchase.Day()
	month := purchase.Month()
	if day >= account.ClosingDay {
		month++
	}
	statement := time.Date(purchase.Year(), month, day, 0, 0, 0, 0, time.UTC)
	return calendar.FirstOfMonth(statement)
}

// ResolveDay is ResolveEffectiveDate over "YYYY-MM-DD" strings.
func ResolveDay(purchaseDay string, account *models.Account) (string, error) {
	purchase, err := calendar.ParseDay(purchaseDay)
	if err != nil {
		return "", err
	}
	return calendar.FormatDay(ResolveEffectiveDate(purchase, account)), nil
}
