package csvparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rocjay1/bo-ledger/internal/cardtag"
	"github.com/rocjay1/bo-ledger/internal/models"
)

var installmentSuffix = regexp.MustCompile(`\s*\(\d+/\d+\)\s*$`)

// ToEntries resolves category and account names against the snapshot and
// builds the entries to store. Rows that cannot be resolved are reported and
// skipped. Installments of one purchase share a group id, keyed by the base
// description, account, category and installment count.
func ToEntries(rows []ImportRow, categories []models.Category, accounts []models.Account, newID func() string, createdAt string) ([]models.Entry, []string) {
	catByName := make(map[string]string, len(categories))
	for _, c := range categories {
		catByName[strings.ToLower(strings.TrimSpace(c.Name))] = c.ID
	}
	accByName := make(map[string]string, len(accounts))
	for _, a := range accounts {
		accByName[strings.ToLower(strings.TrimSpace(a.Name))] = a.ID
	}

	groups := make(map[string]string)
	var entries []models.Entry
	var errors []string

	for _, r := range rows {
		categoryID, ok := catByName[strings.ToLower(r.CategoryName)]
		if !ok {
			errors = append(errors, fmt.Sprintf("Row %d: unknown category %q", r.Row, r.CategoryName))
			continue
		}
		accountID, ok := accByName[strings.ToLower(r.AccountName)]
		if !ok {
			errors = append(errors, fmt.Sprintf("Row %d: unknown account %q", r.Row, r.AccountName))
			continue
		}

		cardID, _ := cardtag.Extract(r.Description)
		description := cardtag.Strip(r.Description)

		e := models.Entry{
			ID:                newID(),
			Date:              r.Date,
			CreatedAt:         createdAt,
			CreatedBy:         r.CreatedBy,
			Amount:            r.Amount,
			Description:       description,
			CategoryID:        categoryID,
			AccountID:         accountID,
			CardID:            cardID,
			Kind:              r.Kind,
			InstallmentNumber: r.InstallmentNumber,
			TotalInstallments: r.TotalInstallments,
		}
		if r.TotalInstallments > 1 {
			base := installmentSuffix.ReplaceAllString(description, "")
			key := strings.Join([]string{strings.ToLower(base), accountID, categoryID, strconv.Itoa(r.TotalInstallments)}, "|")
			groupID, ok := groups[key]
			if !ok {
				groupID = newID()
				groups[key] = groupID
			}
			e.InstallmentGroupID = groupID
		}
		entries = append(entries, e)
	}
	return entries, errors
}
