// Package repair heals historical entries written before the ledger tracked
// billing dates and paid cards as fields.
package repair

import (
	"fmt"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/cardtag"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/rocjay1/bo-ledger/internal/reconcile"
)

// OrphanDates assigns a date to every undated card purchase. An orphan takes
// the date of the bill payment for its card made in the month it was created;
// without one it falls back to its creation day. Dated entries are never
// touched, so a healed snapshot yields no patches.
func OrphanDates(entries []models.Entry, roles models.Roles, accounts []models.Account) ([]models.EntryPatch, []error) {
	idx := models.IndexAccounts(accounts)

	// card id -> month -> first payment day
	payments := make(map[string]map[string]string)
	for i := range entries {
		e := &entries[i]
		if !roles.IsCardPayment(e.CategoryID) || e.Orphan() {
			continue
		}
		cardID, ok := reconcile.PaidCardID(e)
		if !ok {
			continue
		}
		day, err := calendar.ParseDay(e.Date)
		if err != nil {
			continue
		}
		byMonth, ok := payments[cardID]
		if !ok {
			byMonth = make(map[string]string)
			payments[cardID] = byMonth
		}
		if _, seen := byMonth[calendar.MonthKey(day)]; !seen {
			byMonth[calendar.MonthKey(day)] = calendar.FormatDay(day)
		}
	}

	var patches []models.EntryPatch
	var errs []error
	for i := range entries {
		e := &entries[i]
		if !e.Orphan() || !idx.IsCard(e.AccountID) {
			continue
		}
		created, err := calendar.ParseDay(e.CreatedAt)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to date orphan %s: %w", e.ID, err))
			continue
		}
		date := calendar.FormatDay(created)
		if day, ok := payments[e.AccountID][calendar.MonthKey(created)]; ok {
			date = day
		}
		patches = append(patches, models.EntryPatch{ID: e.ID, Date: &date})
	}
	return patches, errs
}

// LegacyCardTags moves card references out of descriptions into CardID.
// With keepTags set the ledger is still writing tags, so descriptions are
// left as they are and only a missing CardID is filled in.
func LegacyCardTags(entries []models.Entry, keepTags bool) []models.EntryPatch {
	var patches []models.EntryPatch
	for _, e := range entries {
		cardID, ok := cardtag.Extract(e.Description)
		if !ok {
			continue
		}
		p := models.EntryPatch{ID: e.ID}
		if e.CardID == "" {
			p.CardID = &cardID
		}
		if !keepTags {
			desc := cardtag.Strip(e.Description)
			p.Description = &desc
		}
		if !p.Empty() {
			patches = append(patches, p)
		}
	}
	return patches
}

// Run computes every repair for the snapshot, one patch per entry. keepTags
// is passed to LegacyCardTags.
func Run(entries []models.Entry, roles models.Roles, accounts []models.Account, keepTags bool) ([]models.EntryPatch, []error) {
	orphans, errs := OrphanDates(entries, roles, accounts)

	var order []string
	merged := make(map[string]models.EntryPatch)
	for _, p := range append(LegacyCardTags(entries, keepTags), orphans...) {
		prev, ok := merged[p.ID]
		if !ok {
			order = append(order, p.ID)
			prev = models.EntryPatch{ID: p.ID}
		}
		merged[p.ID] = prev.Merge(p)
	}

	patches := make([]models.EntryPatch, 0, len(order))
	for _, id := range order {
		patches = append(patches, merged[id])
	}
	return patches, errs
}
