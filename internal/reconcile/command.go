package reconcile

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// PurchaseEdit corrects a detected purchase in place.
type PurchaseEdit struct {
	EntryID     string          `json:"entryId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Command is a saved reconciliation: the full list of manual items and the
// purchases edited along the way.
type Command struct {
	BillID        string            `json:"billId"`
	ManualItems   []models.BillItem `json:"manualItems"`
	PurchaseEdits []PurchaseEdit    `json:"purchaseEdits"`
}

// Patches translates the command into the patch list to apply as one unit.
// The first patch replaces the bill's items. Each edit rewrites a purchase's
// description and amount and moves it to the bill's date. Edits naming an
// entry that is not a detected purchase of the bill are dropped and reported.
func (c Command) Patches(bill *models.Entry, all []models.Entry) ([]models.EntryPatch, []error) {
	cardID, ok := PaidCardID(bill)
	if !ok {
		return nil, []error{models.Invalid("cardId", fmt.Sprintf("entry %s does not pay a card bill", bill.ID))}
	}

	items := make([]models.BillItem, len(c.ManualItems))
	for i, item := range c.ManualItems {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		items[i] = item
	}
	patches := []models.EntryPatch{{ID: bill.ID, BillItems: &items}}

	day, err := calendar.ParseDay(bill.Date)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read bill %s date: %w", bill.ID, err)}
	}
	detected := make(map[string]bool)
	for _, e := range Detected(bill.ID, cardID, calendar.MonthKey(day), all) {
		detected[e.ID] = true
	}

	var errs []error
	for _, edit := range c.PurchaseEdits {
		if !detected[edit.EntryID] {
			errs = append(errs, &models.NotFoundError{Kind: "purchase", ID: edit.EntryID})
			continue
		}
		desc, amount, date := edit.Description, edit.Amount, bill.Date
		patches = append(patches, models.EntryPatch{
			ID:          edit.EntryID,
			Description: &desc,
			Amount:      &amount,
			Date:        &date,
		})
	}
	return patches, errs
}

// Preview reconciles bill as it would look once the command is saved.
func Preview(bill *models.Entry, all []models.Entry, cmd Command) (*View, []error, error) {
	patches, errs := cmd.Patches(bill, all)
	if patches == nil {
		return nil, errs, errs[0]
	}
	after := models.ApplyPatches(all, patches)
	saved := patches[0].Apply(*bill)
	view, err := Reconcile(&saved, after)
	return view, errs, err
}
