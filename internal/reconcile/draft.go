package reconcile

import (
	"fmt"

	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/money"
)

// Draft is a command as typed in the reconcile screen. ItemInputs and
// EditInputs run parallel to ManualItems and PurchaseEdits and hold the raw
// amount fields; a non-empty input takes precedence over the decoded amount.
type Draft struct {
	Command
	ItemInputs []string `json:"itemInputs,omitempty"`
	EditInputs []string `json:"editInputs,omitempty"`
}

// Resolve folds the raw inputs into a command. A field holding only a sign
// reads as zero while previewing; with final set it is rejected.
func (d Draft) Resolve(final bool) (Command, error) {
	cmd := Command{
		BillID:        d.BillID,
		ManualItems:   append([]models.BillItem(nil), d.ManualItems...),
		PurchaseEdits: append([]PurchaseEdit(nil), d.PurchaseEdits...),
	}
	if len(d.ItemInputs) > len(cmd.ManualItems) {
		return Command{}, models.Invalid("itemInputs", fmt.Sprintf("%d inputs for %d items", len(d.ItemInputs), len(cmd.ManualItems)))
	}
	if len(d.EditInputs) > len(cmd.PurchaseEdits) {
		return Command{}, models.Invalid("editInputs", fmt.Sprintf("%d inputs for %d edits", len(d.EditInputs), len(cmd.PurchaseEdits)))
	}

	for i, raw := range d.ItemInputs {
		if raw == "" {
			continue
		}
		in := money.ParseAmountInput(raw)
		if final && in.Pending() {
			return Command{}, models.Invalid(fmt.Sprintf("manualItems[%d].amount", i), "amount has a sign but no digits")
		}
		cmd.ManualItems[i].Amount = in.Value()
	}
	for i, raw := range d.EditInputs {
		if raw == "" {
			continue
		}
		in := money.ParseAmountInput(raw)
		if final && in.Pending() {
			return Command{}, models.Invalid(fmt.Sprintf("purchaseEdits[%d].amount", i), "amount has a sign but no digits")
		}
		cmd.PurchaseEdits[i].Amount = in.Value()
	}
	return cmd, nil
}
