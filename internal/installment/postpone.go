package installment

import (
	"fmt"
	"sort"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
)

// Postpone pushes an entry one month later. When the entry is an installment,
// every later installment of the same purchase moves with it; earlier ones
// stay where they are. Siblings without a date are left for the orphan repair.
func Postpone(entries []models.Entry, id string) ([]models.EntryPatch, error) {
	var target *models.Entry
	for i := range entries {
		if entries[i].ID == id {
			target = &entries[i]
			break
		}
	}
	if target == nil {
		return nil, &models.NotFoundError{Kind: "entry", ID: id}
	}
	if target.Orphan() {
		return nil, models.Invalid("date", "entry has no billing date to postpone")
	}

	moving := []models.Entry{*target}
	if target.IsInstallment() {
		for _, e := range entries {
			if e.ID == target.ID || e.Orphan() {
				continue
			}
			if e.InstallmentGroupID == target.InstallmentGroupID && e.InstallmentNumber > target.InstallmentNumber {
				moving = append(moving, e)
			}
		}
	}
	sort.SliceStable(moving, func(i, j int) bool {
		return moving[i].InstallmentNumber < moving[j].InstallmentNumber
	})

	patches := make([]models.EntryPatch, 0, len(moving))
	for _, e := range moving {
		day, err := calendar.ShiftDay(e.Date, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to postpone entry %s: %w", e.ID, err)
		}
		patches = append(patches, models.EntryPatch{ID: e.ID, Date: &day})
	}
	return patches, nil
}
