package stats

import (
	"sort"

	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/shopspring/decimal"
)

type AccountBalance struct {
	AccountID string          `json:"accountId"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
}

// Balances returns the running balance of every active non-card account:
// its initial balance plus the income and minus the expense recorded on it
// since the initial balance date. Highest balance first.
func Balances(accounts []models.Account, entries []models.Entry) []AccountBalance {
	byAccount := make(map[string][]models.Entry)
	for _, e := range entries {
		byAccount[e.AccountID] = append(byAccount[e.AccountID], e)
	}

	out := []AccountBalance{}
	for _, acc := range accounts {
		if !acc.IsActive || acc.IsCreditCard {
			continue
		}
		since := acc.InitialBalanceDate
		if _, err := calendar.ParseDay(since); err != nil {
			since = ""
		}

		balance := acc.InitialBalance
		for _, e := range byAccount[acc.ID] {
			if since != "" && (e.Orphan() || e.Date < since) {
				continue
			}
			if models.ParseKind(string(e.Kind)) == models.KindIncome {
				balance = balance.Add(e.Amount)
			} else {
				balance = balance.Sub(e.Amount)
			}
		}
		out = append(out, AccountBalance{AccountID: acc.ID, Name: acc.Name, Balance: balance})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Balance.GreaterThan(out[j].Balance) })
	return out
}
