package models

import (
	"github.com/shopspring/decimal"
)

// EntryPatch is a partial update of one entry. Nil fields are left alone.
type EntryPatch struct {
	ID          string           `json:"id"`
	Date        *string          `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	CardID      *string          `json:"cardId,omitempty"`
	BillItems   *[]BillItem      `json:"billItems,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.Date == nil && p.Description == nil && p.Amount == nil && p.CardID == nil && p.BillItems == nil
}

// Apply returns a copy of e with the patch applied.
func (p EntryPatch) Apply(e Entry) Entry {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.CardID != nil {
		e.CardID = *p.CardID
	}
	if p.BillItems != nil {
		e.BillItems = append([]BillItem(nil), (*p.BillItems)...)
	}
	return e
}

// Merge folds other into p; fields set in other win.
func (p EntryPatch) Merge(other EntryPatch) EntryPatch {
	if other.Date != nil {
		p.Date = other.Date
	}
	if other.Description != nil {
		p.Description = other.Description
	}
	if other.Amount != nil {
		p.Amount = other.Amount
	}
	if other.CardID != nil {
		p.CardID = other.CardID
	}
	if other.BillItems != nil {
		p.BillItems = other.BillItems
	}
	return p
}

// ApplyPatches returns entries with every matching patch applied in order.
func ApplyPatches(entries []Entry, patches []EntryPatch) []Entry {
	byID := make(map[string][]EntryPatch, len(patches))
	for _, p := range patches {
		byID[p.ID] = append(byID[p.ID], p)
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		for _, p := range byID[e.ID] {
			e = p.Apply(e)
		}
		out[i] = e
	}
	return out
}
