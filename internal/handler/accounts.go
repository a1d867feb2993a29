package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/models"
)

// HandleAccounts handles GET and POST requests for accounts and cards.
func (d *Dependencies) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := d.Database.ListAccounts(r.Context())
		if err != nil {
			writeFailure(w, "get accounts", err)
			return
		}
		slog.Info("retrieved accounts", "count", len(accounts))
		WriteJSON(w, http.StatusOK, accounts)

	case http.MethodPost:
		var account models.Account
		if !decodeBody(w, r, &account) {
			return
		}
		if err := validateAccount(&account); err != nil {
			writeFailure(w, "save account", err)
			return
		}
		if account.ID == "" {
			account.ID = uuid.New().String()
		}

		if err := d.Database.SaveAccount(r.Context(), account); err != nil {
			writeFailure(w, "save account", err)
			return
		}
		slog.Info("saved account", "id", account.ID, "name", account.Name, "credit_card", account.IsCreditCard)
		WriteJSON(w, http.StatusOK, account)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func validateAccount(a *models.Account) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return models.Invalid("name", "is required")
	}
	if a.IsCreditCard {
		if a.ClosingDay < 1 || a.ClosingDay > 30 {
			return models.Invalid("closingDay", "must be between 1 and 30")
		}
		return nil
	}
	a.ClosingDay = 0
	if a.InitialBalanceDate != "" {
		if _, err := calendar.ParseDay(a.InitialBalanceDate); err != nil {
			return models.Invalid("initialBalanceDate", "must be YYYY-MM-DD")
		}
	}
	return nil
}
