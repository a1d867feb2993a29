package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// DrilldownItem is one amount behind a category total. Bill items carry a
// composite "<billID>:<itemID>" id.
type DrilldownItem struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	AccountID   string          `json:"accountId"`
	Source      Source          `json:"source"`
}

// Drilldown lists what makes up the named category's total in the period,
// newest first. Offsets against the card-payment category are not listed.
func Drilldown(entries []models.Entry, categories []models.Category, accounts []models.Account, roles models.Roles, period Period, category string, now time.Time) []DrilldownItem {
	names := models.CategoryNames(categories)
	window := period.Window(now)

	items := []DrilldownItem{}
	for _, c := range contributions(entries, models.IndexAccounts(accounts), roles) {
		if c.source == SourceOffset || !window.Contains(c.day) {
			continue
		}
		if !strings.EqualFold(categoryName(names, c.categoryID), category) {
			continue
		}
		items = append(items, DrilldownItem{
			ID:          c.id,
			Date:        calendar.FormatDay(c.day),
			Description: c.description,
			Amount:      c.amount,
			AccountID:   c.accountID,
			Source:      c.source,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date > items[j].Date })
	return items
}
