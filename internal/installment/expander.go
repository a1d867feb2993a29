// Package installment turns a purchase intent into the dated ledger entries
// it produces, and moves installment chains between statements.
package installment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/bo-ledger/internal/billing"
	"github.com/rocjay1/bo-ledger/internal/calendar"
	"github.com/rocjay1/bo-ledger/internal/cardtag"
	"github.com/rocjay1/bo-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// PurchaseIntent is what the user asked to record, before ids, creation time
// and billing dates are assigned.
type PurchaseIntent struct {
	Date                 string            `json:"date"` // purchase day, YYYY-MM-DD
	Amount               decimal.Decimal   `json:"amount"`
	Description          string            `json:"description"`
	CategoryID           string            `json:"categoryId"`
	AccountID            string            `json:"accountId"`
	CardID               string            `json:"cardId,omitempty"`
	DestinationAccountID string            `json:"destinationAccountId,omitempty"`
	Kind                 models.Kind       `json:"type"`
	BillItems            []models.BillItem `json:"billItems,omitempty"`
	TotalInstallments    int               `json:"totalInstallments"`
	CreatedBy            string            `json:"createdBy,omitempty"`
}

// Expander builds entry batches. The zero value is not usable; use NewExpander.
type Expander struct {
	Roles models.Roles
	// TagCardIDs also writes the paid card into the description, for stores
	// that cannot keep CardID.
	TagCardIDs bool

	NewID func() string
	Now   func() time.Time
}

// NewExpander returns an Expander using random UUIDs and the wall clock.
func NewExpander(roles models.Roles, tagCardIDs bool) *Expander {
	return &Expander{
		Roles:      roles,
		TagCardIDs: tagCardIDs,
		NewID:      uuid.NewString,
		Now:        time.Now,
	}
}

// Validate checks an intent without looking at the snapshot.
func (x *Expander) Validate(intent PurchaseIntent) error {
	if !intent.Amount.IsPositive() {
		return models.Invalid("amount", "must be greater than zero")
	}
	if strings.TrimSpace(intent.CategoryID) == "" {
		return models.Invalid("categoryId", "a category must be selected")
	}
	if strings.TrimSpace(intent.AccountID) == "" {
		return models.Invalid("accountId", "an account must be selected")
	}
	if intent.TotalInstallments < 1 {
		return models.Invalid("totalInstallments", "must be at least 1")
	}
	if _, err := calendar.ParseDay(intent.Date); err != nil {
		return models.Invalid("date", err.Error())
	}
	if x.Roles.IsCardPayment(intent.CategoryID) && strings.TrimSpace(intent.CardID) == "" {
		return models.Invalid("cardId", "select the card being paid")
	}
	if x.Roles.IsTransfer(intent.CategoryID) {
		switch {
		case strings.TrimSpace(intent.DestinationAccountID) == "":
			return models.Invalid("destinationAccountId", "select the destination account")
		case intent.DestinationAccountID == intent.AccountID:
			return models.Invalid("destinationAccountId", "must differ from the source account")
		case intent.TotalInstallments > 1:
			return models.Invalid("totalInstallments", "transfers cannot be split")
		}
	}
	return nil
}

// Expand returns every entry the intent produces, or an error and nothing.
// Installment i is dated at the resolved statement month plus i-1 months and
// carries the full amount.
func (x *Expander) Expand(intent PurchaseIntent, accounts []models.Account) ([]models.Entry, error) {
	if err := x.Validate(intent); err != nil {
		return nil, err
	}

	idx := models.IndexAccounts(accounts)
	account, ok := idx[intent.AccountID]
	if !ok {
		return nil, &models.NotFoundError{Kind: "account", ID: intent.AccountID}
	}
	if intent.CardID != "" && !idx.IsCard(intent.CardID) {
		return nil, &models.NotFoundError{Kind: "card", ID: intent.CardID}
	}
	transfer := x.Roles.IsTransfer(intent.CategoryID)
	if transfer {
		if _, ok := idx[intent.DestinationAccountID]; !ok {
			return nil, &models.NotFoundError{Kind: "account", ID: intent.DestinationAccountID}
		}
	}

	purchase, _ := calendar.ParseDay(intent.Date)
	effective := billing.ResolveEffectiveDate(purchase, account)
	createdAt := x.Now().UTC().Format(time.RFC3339)

	kind := intent.Kind
	if kind == "" {
		kind = models.KindExpense
	}

	total := intent.TotalInstallments
	var groupID string
	if total > 1 {
		groupID = x.NewID()
	}

	description := strings.TrimSpace(intent.Description)
	if intent.CardID != "" && x.TagCardIDs {
		description = cardtag.Tag(intent.CardID, description)
	}

	entries := make([]models.Entry, 0, total+1)
	for i := 1; i <= total; i++ {
		desc := description
		if total > 1 {
			desc = strings.TrimSpace(fmt.Sprintf("%s (%d/%d)", description, i, total))
		}
		entries = append(entries, models.Entry{
			ID:                 x.NewID(),
			Date:               calendar.FormatDay(calendar.AddMonths(effective, i-1)),
			CreatedAt:          createdAt,
			CreatedBy:          intent.CreatedBy,
			Amount:             intent.Amount,
			Description:        desc,
			CategoryID:         intent.CategoryID,
			AccountID:          intent.AccountID,
			CardID:             intent.CardID,
			Kind:               kind,
			BillItems:          x.billItems(intent.BillItems),
			InstallmentNumber:  i,
			TotalInstallments:  total,
			InstallmentGroupID: groupID,
		})
	}

	if transfer {
		entries = append(entries, models.Entry{
			ID:                x.NewID(),
			Date:              calendar.FormatDay(purchase),
			CreatedAt:         createdAt,
			CreatedBy:         intent.CreatedBy,
			Amount:            intent.Amount,
			Description:       cardtag.MarkTransfer(description),
			CategoryID:        intent.CategoryID,
			AccountID:         intent.DestinationAccountID,
			Kind:              models.KindIncome,
			InstallmentNumber: 1,
			TotalInstallments: 1,
		})
	}

	return entries, nil
}

func (x *Expander) billItems(items []models.BillItem) []models.BillItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.BillItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = x.NewID()
		}
		out[i] = item
	}
	return out
}
