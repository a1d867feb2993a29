// Package reconcile proves that a card-bill payment is made of the purchases
// billed on that card in the bill's month plus the manual items attached to it.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/cardtag"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/money"
	"github.com/shopspring/decimal"
)

// Purchase is a detected card purchase as shown in a reconciliation.
type Purchase struct {
	EntryID     string          `json:"entryId"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  string          `json:"categoryId"`
	AmountInput string          `json:"amountInput"`
}

// View is the computed state of one bill. An incomplete view is a normal
// result, not a failure.
type View struct {
	BillID        string            `json:"billId"`
	CardID        string            `json:"cardId"`
	Month         string            `json:"month"`
	PaidAmount    decimal.Decimal   `json:"paidAmount"`
	Detected      []Purchase        `json:"detected"`
	ManualItems   []models.BillItem `json:"manualItems"`
	ItemInputs    []string          `json:"itemInputs"` // parallel to ManualItems
	DetectedTotal decimal.Decimal   `json:"detectedTotal"`
	ManualTotal   decimal.Decimal   `json:"manualTotal"`
	ComposedTotal decimal.Decimal   `json:"composedTotal"`
	Difference    decimal.Decimal   `json:"difference"`
	Complete      bool              `json:"complete"`
}

// PaidCardID returns the card a bill payment settles, reading the legacy
// description tag when the field is empty.
func PaidCardID(bill *models.Entry) (string, bool) {
	if bill.CardID != "" {
		return bill.CardID, true
	}
	return cardtag.Extract(bill.Description)
}

// Detected returns the entries billed on cardID in the month of day, minus
// the bill itself. Entries whose date cannot be read are skipped.
func Detected(billID, cardID string, month string, all []models.Entry) []models.Entry {
	var out []models.Entry
	for _, e := range all {
		if e.ID == billID || e.AccountID != cardID || e.Orphan() {
			continue
		}
		d, err := calendar.ParseDay(e.Date)
		if err != nil {
			continue
		}
		if calendar.MonthKey(d) == month {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Reconcile computes the view for bill against the whole snapshot.
func Reconcile(bill *models.Entry, all []models.Entry) (*View, error) {
	cardID, ok := PaidCardID(bill)
	if !ok {
		return nil, models.Invalid("cardId", fmt.Sprintf("entry %s does not pay a card bill", bill.ID))
	}
	day, err := calendar.ParseDay(bill.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to read bill %s date: %w", bill.ID, err)
	}
	month := calendar.MonthKey(day)

	view := &View{
		BillID:        bill.ID,
		CardID:        cardID,
		Month:         month,
		PaidAmount:    bill.Amount,
		Detected:      []Purchase{},
		ManualItems:   []models.BillItem{},
		ItemInputs:    []string{},
		DetectedTotal: decimal.Zero,
		ManualTotal:   decimal.Zero,
	}

	for _, e := range Detected(bill.ID, cardID, month, all) {
		view.Detected = append(view.Detected, Purchase{
			EntryID:     e.ID,
			Date:        e.Date,
			Description: cardtag.Strip(e.Description),
			Amount:      e.Amount,
			CategoryID:  e.CategoryID,
			AmountInput: money.AmountInputFrom(e.Amount).String(),
		})
		view.DetectedTotal = view.DetectedTotal.Add(e.Amount)
	}
	for _, item := range bill.BillItems {
		item.Description = cardtag.Strip(item.Description)
		view.ManualItems = append(view.ManualItems, item)
		view.ItemInputs = append(view.ItemInputs, money.AmountInputFrom(item.Amount).String())
		view.ManualTotal = view.ManualTotal.Add(item.Amount)
	}

	view.ComposedTotal = money.Sum(view.DetectedTotal, view.ManualTotal)
	view.Difference = view.PaidAmount.Sub(view.ComposedTotal)
	view.Complete = money.WithinTolerance(view.Difference)
	return view, nil
}

// FindBill looks a bill payment up in the snapshot.
func FindBill(all []models.Entry, id string) (*models.Entry, error) {
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, &models.NotFoundError{Kind: "bill", ID: id}
}
